package stream

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"os"
	"strconv"
)

// Kalshi handshake header names.
const (
	headerKalshiKey       = "KALSHI-ACCESS-KEY"
	headerKalshiSignature = "KALSHI-ACCESS-SIGNATURE"
	headerKalshiTimestamp = "KALSHI-ACCESS-TIMESTAMP"
)

// loadPrivateKey reads a PEM-encoded RSA private key, accepting PKCS#8 or
// PKCS#1 encoding.
func loadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("no PEM block in %s", path)
	}

	// PKCS#8 first; Kalshi-issued keys use it.
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("key is not RSA")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return rsaKey, nil
}

// signHandshake builds the authentication headers for the WebSocket upgrade.
// The signing string is <ms-timestamp> || "GET" || <upgrade-path>, signed
// with RSA-PSS over SHA-256. A fresh timestamp is generated per call, so
// every reconnect attempt signs anew.
func signHandshake(key *rsa.PrivateKey, keyID, upgradePath string, timestampMS int64) (http.Header, error) {
	message := strconv.FormatInt(timestampMS, 10) + "GET" + upgradePath

	hashed := sha256.Sum256([]byte(message))
	signature, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, hashed[:], nil)
	if err != nil {
		return nil, fmt.Errorf("sign handshake: %w", err)
	}

	headers := http.Header{}
	headers.Set(headerKalshiKey, keyID)
	headers.Set(headerKalshiSignature, base64.StdEncoding.EncodeToString(signature))
	headers.Set(headerKalshiTimestamp, strconv.FormatInt(timestampMS, 10))

	return headers, nil
}
