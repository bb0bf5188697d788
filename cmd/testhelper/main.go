package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	mdlproof "github.com/mdlproof/client-go"
	"github.com/mdlproof/client-go/internal/crypto"
	"github.com/mdlproof/client-go/internal/walletsim"
	"github.com/mdlproof/client-go/internal/witness"
)

const envPrefix = "MDL_"

// Config holds the process streams so commands can be run from tests.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// EnvFile is loaded before flags are read; a missing file is ignored.
	EnvFile string
}

// DefaultConfig returns a Config bound to the process streams.
func DefaultConfig() Config {
	return Config{
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		EnvFile: ".env",
	}
}

type options struct {
	origin       string
	eventID      string
	boundAddress string
	reveal       []string
	proverURL    string
	apiKey       string
	timeout      time.Duration
	verbose      bool

	expired      bool
	truncate     bool
	preflight    bool
	jurisdiction string

	healthTimeout time.Duration
}

func run(args []string, cfg Config) error {
	if cfg.EnvFile != "" {
		// Values already in the environment win over the file.
		_ = godotenv.Load(cfg.EnvFile)
	}

	root := newRootCommand(cfg)
	root.SetArgs(args)
	return root.Execute()
}

func newRootCommand(cfg Config) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "testhelper",
		Short:         "Exercise the mDL verifier pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setFlagsFromEnv(envPrefix, cmd.Flags())
		},
	}
	root.SetIn(cfg.Stdin)
	root.SetOut(cfg.Stdout)
	root.SetErr(cfg.Stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.origin, "origin", "https://verifier.example", "origin bound into the session transcript")
	flags.StringSliceVar(&opts.reveal, "reveal", []string{"age_over_18"}, "claims to reveal: age_over_18, age_over_21, issuing_jurisdiction")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log pipeline stages to stderr")

	root.AddCommand(
		newRequestCommand(cfg, opts),
		newDemoCommand(cfg, opts),
		newHealthCommand(cfg, opts),
	)
	return root
}

// setFlagsFromEnv fills unset flags from PREFIX_FLAG_NAME variables.
func setFlagsFromEnv(prefix string, fs *pflag.FlagSet) {
	set := map[string]bool{}
	fs.Visit(func(f *pflag.Flag) {
		set[f.Name] = true
	})
	fs.VisitAll(func(f *pflag.Flag) {
		if set[f.Name] {
			return
		}
		name := strings.TrimSuffix(prefix, "_") + "_" + strings.ReplaceAll(strings.ToUpper(f.Name), "-", "_")
		if e, ok := os.LookupEnv(name); ok {
			_ = f.Value.Set(e)
		}
	})
}

func (o *options) logger(cfg Config) logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(cfg.Stderr)
	if o.verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func (o *options) revealFlags() (mdlproof.RevealFlags, error) {
	var r mdlproof.RevealFlags
	for _, id := range o.reveal {
		switch strings.TrimSpace(id) {
		case witness.ClaimAgeOver18:
			r.AgeOver18 = true
		case witness.ClaimAgeOver21:
			r.AgeOver21 = true
		case witness.ClaimJurisdiction:
			r.Jurisdiction = true
		case "":
		default:
			return r, fmt.Errorf("unknown claim %q", id)
		}
	}
	return r, nil
}

func newRequestCommand(cfg Config, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "request",
		Short: "Print the encryption info and device request of a new session",
		RunE: func(cmd *cobra.Command, args []string) error {
			reveal, err := opts.revealFlags()
			if err != nil {
				return err
			}

			v := mdlproof.New(mdlproof.WithLogger(opts.logger(cfg)))
			session, err := v.NewSession(opts.origin)
			if err != nil {
				return err
			}
			defer session.Discard()

			info, err := session.EncryptionInfo()
			if err != nil {
				return err
			}
			request, err := session.DeviceRequest(mdlproof.Elements(reveal))
			if err != nil {
				return err
			}

			return writeJSON(cfg.Stdout, RequestOutput{
				Origin:         session.Origin(),
				Nonce:          crypto.ToBase64URL(session.Nonce()),
				EncryptionInfo: crypto.ToBase64URL(info),
				DeviceRequest:  crypto.ToBase64URL(request),
			})
		},
	}
}

// RequestOutput is printed by the request command.
type RequestOutput struct {
	Origin         string `json:"origin"`
	Nonce          string `json:"nonce"`
	EncryptionInfo string `json:"encryptionInfo"`
	DeviceRequest  string `json:"deviceRequest"`
}

// DemoOutput is printed by the demo command.
type DemoOutput struct {
	DocType   string                 `json:"docType"`
	Claims    []string               `json:"claims"`
	Public    mdlproof.PublicOutputs `json:"public"`
	Truncated []string               `json:"truncated,omitempty"`
	Proof     *mdlproof.Proof        `json:"proof,omitempty"`
}

func newDemoCommand(cfg Config, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a simulated wallet presentation through the verifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runDemo(ctx, cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.eventID, "event-id", "demo-event", "event the nullifier is scoped to")
	flags.StringVar(&opts.boundAddress, "bound-address", "0x0000000000000000000000000000000000000001", "address the proof is bound to")
	flags.StringVar(&opts.proverURL, "prover-url", "", "proving service base URL; empty skips proving")
	flags.StringVar(&opts.apiKey, "api-key", "", "proving service API key")
	flags.DurationVar(&opts.timeout, "timeout", 2*time.Minute, "overall deadline")
	flags.StringVar(&opts.jurisdiction, "jurisdiction", "CA", "issuing_jurisdiction value the simulated issuer signs")
	flags.BoolVar(&opts.expired, "expired", false, "issue a credential whose validity has ended")
	flags.BoolVar(&opts.truncate, "truncate", false, "truncate oversized claims instead of failing")
	flags.BoolVar(&opts.preflight, "preflight", true, "verify the issuer signature and claim digests before assembly")
	return cmd
}

func runDemo(ctx context.Context, cfg Config, opts *options) error {
	reveal, err := opts.revealFlags()
	if err != nil {
		return err
	}
	log := opts.logger(cfg)

	vopts := []mdlproof.Option{
		mdlproof.WithLogger(log),
		mdlproof.WithPreflightChecks(opts.preflight),
	}
	if opts.truncate {
		vopts = append(vopts, mdlproof.WithOversizePolicy(mdlproof.TruncateOversized))
	}
	var prover mdlproof.Prover
	if opts.proverURL != "" {
		prover, err = mdlproof.NewHTTPProver(opts.proverURL,
			mdlproof.WithAPIKey(opts.apiKey),
			mdlproof.WithProverLogger(log),
		)
		if err != nil {
			return err
		}
		vopts = append(vopts, mdlproof.WithProver(prover))
	}
	v := mdlproof.New(vopts...)

	session, err := v.NewSession(opts.origin)
	if err != nil {
		return err
	}
	response, err := simulateWallet(session, opts)
	if err != nil {
		session.Discard()
		return fmt.Errorf("wallet: %w", err)
	}

	doc, err := mdlproof.ParseEncryptedDocument(response)
	if err != nil {
		return describe(err)
	}

	req := mdlproof.WitnessRequest{
		EventID:      opts.eventID,
		BoundAddress: opts.boundAddress,
		Reveal:       reveal,
	}

	out := DemoOutput{}
	var w *mdlproof.Witness
	if prover != nil {
		presentation, err := v.Prove(ctx, session, doc, req)
		if err != nil {
			return describe(err)
		}
		w = presentation.Witness
		out.Proof = presentation.Proof
	} else {
		cred, err := v.Open(session, doc)
		if err != nil {
			return describe(err)
		}
		if w, err = v.BuildWitness(cred, req); err != nil {
			return describe(err)
		}
	}

	out.DocType = mdlproof.DefaultDocType
	out.Public = w.Public
	out.Truncated = w.Truncated
	out.Claims = mdlproof.Elements(reveal)
	return writeJSON(cfg.Stdout, out)
}

// simulateWallet issues a test credential and seals it to session.
func simulateWallet(session *mdlproof.Session, opts *options) ([]byte, error) {
	info, err := session.EncryptionInfo()
	if err != nil {
		return nil, err
	}
	req, err := walletsim.ReadEncryptionInfo(info)
	if err != nil {
		return nil, err
	}

	issuer, err := walletsim.NewIssuer()
	if err != nil {
		return nil, err
	}

	claims := walletsim.DefaultClaims()
	for i := range claims {
		if claims[i].Identifier == witness.ClaimJurisdiction {
			claims[i].Value = opts.jurisdiction
		}
	}
	docOpts := walletsim.DocumentOptions{Claims: claims}
	if opts.expired {
		docOpts.Signed = time.Now().AddDate(0, -2, 0)
		docOpts.ValidUntil = time.Now().AddDate(0, -1, 0)
	}

	plaintext, err := issuer.Issue(docOpts)
	if err != nil {
		return nil, err
	}
	sealed, err := walletsim.Seal(req, plaintext, walletsim.SealOptions{Origin: session.Origin()})
	if err != nil {
		return nil, err
	}
	return []byte(crypto.ToBase64URL(sealed)), nil
}

func newHealthCommand(cfg Config, opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the proving service is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.proverURL == "" {
				return fmt.Errorf("--prover-url is required")
			}
			prover, err := mdlproof.NewHTTPProver(opts.proverURL,
				mdlproof.WithAPIKey(opts.apiKey),
				mdlproof.WithProverLogger(opts.logger(cfg)),
			)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.healthTimeout)
			defer cancel()
			if err := mdlproof.Health(ctx, prover); err != nil {
				return err
			}
			return writeJSON(cfg.Stdout, map[string]bool{"success": true})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.proverURL, "prover-url", "", "proving service base URL")
	flags.StringVar(&opts.apiKey, "api-key", "", "proving service API key")
	flags.DurationVar(&opts.healthTimeout, "timeout", 10*time.Second, "request deadline")
	return cmd
}

// describe prefixes err with its taxonomy kind.
func describe(err error) error {
	return fmt.Errorf("%s: %w", mdlproof.KindOf(err), err)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
