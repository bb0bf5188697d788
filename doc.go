// Package mdlproof verifies mobile driving licence (mDL) presentations made
// over the Digital Credentials API and turns them into zero-knowledge proof
// witnesses.
//
// A presentation runs through a single-use Session: the verifier publishes
// an encryption info and device request, the wallet seals its response with
// HPKE (DHKEM(P-256, HKDF-SHA256), HKDF-SHA256, AES-128-GCM) to the session
// key with the session transcript as associated data, and the verifier opens
// it, parses the issuer-signed credential and assembles the witness.
//
// Basic usage:
//
//	v := mdlproof.New(mdlproof.WithProver(p))
//
//	session, err := v.NewSession("https://verifier.example")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	info, _ := session.EncryptionInfo()
//	request, _ := session.DeviceRequest(mdlproof.Elements(reveal))
//
//	// Hand info and request to the browser, receive the wallet response.
//
//	doc, err := mdlproof.ParseEncryptedDocument(response)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	presentation, err := v.Prove(ctx, session, doc, mdlproof.WitnessRequest{
//	    EventID:      "spring-vote-2026",
//	    BoundAddress: "0x00000000000000000000000000000000000000aa",
//	    Reveal:       reveal,
//	})
//	switch mdlproof.KindOf(err) {
//	case mdlproof.KindNoData, mdlproof.KindDecryptionFailed:
//	    // ask the holder to present again with a new session
//	}
package mdlproof
