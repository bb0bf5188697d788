package mdlproof

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mdlproof/client-go/internal/prover"
)

// Prover turns a witness into a zero-knowledge proof.
type Prover interface {
	Prove(ctx context.Context, w *Witness) (*Proof, error)
}

// Proof is the output of a Prover.
type Proof struct {
	// Proof is the serialized proof as produced by the backend.
	Proof json.RawMessage `json:"proof"`
	// PublicSignals are the circuit's public outputs as the backend reports them.
	PublicSignals []string `json:"publicSignals"`
	// RequestID identifies the job on a remote backend, if any.
	RequestID string `json:"requestId,omitempty"`
}

// HTTPProverOption configures a prover created by NewHTTPProver.
type HTTPProverOption func(*prover.Config)

// WithAPIKey sets the bearer token sent to the proving service.
func WithAPIKey(key string) HTTPProverOption {
	return func(c *prover.Config) {
		c.APIKey = key
	}
}

// WithHTTPClient sets a custom HTTP client for the proving service.
func WithHTTPClient(client *http.Client) HTTPProverOption {
	return func(c *prover.Config) {
		c.HTTPClient = client
	}
}

// WithRetries sets the number of retries for proving requests.
// Default: 3
func WithRetries(count int) HTTPProverOption {
	return func(c *prover.Config) {
		if c.Retry == nil {
			c.Retry = prover.DefaultRetryConfig()
		}
		c.Retry.MaxRetries = count
	}
}

// WithProverLogger sets the logger for request retries.
func WithProverLogger(logger logrus.FieldLogger) HTTPProverOption {
	return func(c *prover.Config) {
		c.Logger = logger
	}
}

type httpProver struct {
	client *prover.Client
}

// NewHTTPProver returns a Prover backed by a remote proving service at baseURL.
func NewHTTPProver(baseURL string, opts ...HTTPProverOption) (Prover, error) {
	cfg := prover.Config{BaseURL: baseURL}
	for _, opt := range opts {
		opt(&cfg)
	}

	client, err := prover.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &httpProver{client: client}, nil
}

func (p *httpProver) Prove(ctx context.Context, w *Witness) (*Proof, error) {
	resp, err := p.client.Prove(ctx, w)
	if err != nil {
		return nil, err
	}
	return &Proof{
		Proof:         resp.Proof,
		PublicSignals: resp.PublicSignals,
		RequestID:     resp.RequestID,
	}, nil
}

// Health checks that the proving service behind p is reachable. It returns
// nil for provers that are not HTTP backed.
func Health(ctx context.Context, p Prover) error {
	hp, ok := p.(*httpProver)
	if !ok {
		return nil
	}
	return hp.client.Health(ctx)
}
