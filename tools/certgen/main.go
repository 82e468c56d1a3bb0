// Package main generates development TLS material for the HydroPal server:
// a CA (unless an existing one is given) and a server certificate signed by it.
//
// Usage:
//
//	certgen -out certs -hosts localhost,127.0.0.1
//	certgen -out certs -ca-cert certs/ca.crt -ca-key certs/ca.key
package main

import (
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atinyakov/HydroPal/internal/certgen"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("certgen", flag.ContinueOnError)
	fs.SetOutput(out)
	dir := fs.String("out", "certs", "directory for generated files")
	hosts := fs.String("hosts", "localhost,127.0.0.1", "comma-separated DNS names and IPs for the server certificate")
	caCertPath := fs.String("ca-cert", "", "existing CA certificate to sign with")
	caKeyPath := fs.String("ca-key", "", "existing CA private key to sign with")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*caCertPath == "") != (*caKeyPath == "") {
		return errors.New("-ca-cert and -ca-key must be given together")
	}

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var (
		caCert *x509.Certificate
		caKey  any
	)
	if *caCertPath != "" {
		var err error
		caCert, caKey, err = certgen.LoadCACredentials(*caCertPath, *caKeyPath)
		if err != nil {
			return err
		}
	} else {
		cert, key, bundle, err := certgen.GenerateCA("HydroPal Dev CA")
		if err != nil {
			return err
		}
		if err := bundle.WriteFiles(filepath.Join(*dir, "ca.crt"), filepath.Join(*dir, "ca.key")); err != nil {
			return err
		}
		caCert, caKey = cert, key
	}

	server, err := certgen.GenerateServerCertificate(strings.Split(*hosts, ","), caCert, caKey)
	if err != nil {
		return err
	}
	if err := server.WriteFiles(filepath.Join(*dir, "server.crt"), filepath.Join(*dir, "server.key")); err != nil {
		return err
	}

	fmt.Fprintf(out, "Certificates generated into %s\n", *dir)
	return nil
}
