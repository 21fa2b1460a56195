package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/aminebenkeroum/tiks-straumur/internal/modules/signature"
)

// Sends a signed webhook to a locally running adapter, in either of the
// two wire protocols:
//
//	-mode refund   raw-body hex signature in x-vivenu-signature
//	-mode event    field-tuple base64 signature in the hmacSignature field
func main() {
	mode := flag.String("mode", "refund", "Webhook protocol: refund or event")
	url := flag.String("url", "http://localhost:8080/paystack/refund", "Webhook URL")
	secret := flag.String("secret", os.Getenv("GATEWAY_SECRET"), "Webhook secret (raw for refund, hex for event)")

	transactionID := flag.String("transaction-id", "64f1c0ffee12345678901234", "Platform transaction id (refund mode)")
	eventType := flag.String("type", "Capture", "Event type (event mode)")
	merchantRef := flag.String("merchant-ref", "9990QQAZ1221", "Payment request id (event mode)")
	payfacRef := flag.String("payfac-ref", "21135253156", "Provider reference (event mode)")
	amount := flag.String("amount", "48900", "Amount in minor units")
	currency := flag.String("currency", "ISK", "Currency (event mode)")
	success := flag.String("success", "true", "Success flag, exact wire string (event mode)")
	dryRun := flag.Bool("dry-run", false, "Only print body and signature, don't send")

	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "Error: secret not provided and GATEWAY_SECRET not set")
		os.Exit(1)
	}

	var body []byte
	headers := map[string]string{"Content-Type": "application/json"}

	switch *mode {
	case "refund":
		minor, err := strconv.ParseFloat(*amount, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing amount: %v\n", err)
			os.Exit(1)
		}

		var payload struct {
			Type string `json:"type"`
			Data struct {
				TransactionID string  `json:"transactionId"`
				Amount        float64 `json:"amount"`
			} `json:"data"`
		}
		payload.Type = "payment.refund"
		payload.Data.TransactionID = *transactionID
		payload.Data.Amount = minor

		body, err = json.Marshal(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
			os.Exit(1)
		}
		sig := signature.NewRawBodySigner(*secret).Sign(body)
		headers["x-vivenu-signature"] = sig
		fmt.Printf("x-vivenu-signature: %s\n", sig)

	case "event":
		signer, err := signature.NewFieldSignerHex(*secret, signature.NullAsLiteral)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error decoding secret: %v\n", err)
			os.Exit(1)
		}
		sig := signer.Sign([]*string{nil, payfacRef, merchantRef, amount, currency, nil, success})

		body, err = json.Marshal(map[string]any{
			"eventType":         *eventType,
			"success":           *success,
			"checkoutReference": nil,
			"payfacReference":   *payfacRef,
			"merchantReference": *merchantRef,
			"amount":            *amount,
			"currency":          *currency,
			"reason":            nil,
			"hmacSignature":     sig,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error marshaling payload: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("hmacSignature: %s\n", sig)

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", *mode)
		os.Exit(1)
	}

	fmt.Printf("Body: %s\n", body)

	if *dryRun {
		fmt.Println("\n[DRY RUN] Not sending request")
		return
	}

	fmt.Printf("\nSending to %s...\n", *url)
	req, err := http.NewRequest(http.MethodPost, *url, bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating request: %v\n", err)
		os.Exit(1)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error sending request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\n", resp.StatusCode)
	fmt.Printf("Response: %s\n", respBody)

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
