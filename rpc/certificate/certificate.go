// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"io/ioutil"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/bookstored/fault"
	"github.com/bitmark-inc/bookstored/util"
	"github.com/bitmark-inc/logger"
)

const (
	validity = 10 * 365 * 24 * time.Hour
)

// Get - verify a PEM encoded certificate and key, returning the
// server configuration and certificate fingerprint
func Get(log *logger.L, name, certificate, key string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	keyPair, err := tls.X509KeyPair([]byte(certificate), []byte(key))
	if err != nil {
		log.Errorf("%s failed to load keypair: %v", name, err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
	}

	fin = Fingerprint(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}

// Load - as Get but reading both items from files
func Load(log *logger.L, name, certificateFileName, keyFileName string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	certificate, err := ioutil.ReadFile(certificateFileName)
	if nil != err {
		log.Errorf("%s: read certificate: %q  error: %s", name, certificateFileName, err)
		return nil, fin, err
	}
	key, err := ioutil.ReadFile(keyFileName)
	if nil != err {
		log.Errorf("%s: read private key: %q  error: %s", name, keyFileName, err)
		return nil, fin, err
	}
	return Get(log, name, string(certificate), string(key))
}

// ClientConfig - trust only the certificate held in a PEM file
//
// an empty file name returns a configuration that accepts any
// certificate, as used with self signed test servers
func ClientConfig(certificateFileName string) (*tls.Config, error) {
	if "" == certificateFileName {
		return &tls.Config{
			InsecureSkipVerify: true,
		}, nil
	}

	certificate, err := ioutil.ReadFile(certificateFileName)
	if nil != err {
		return nil, err
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(certificate) {
		return nil, fault.ErrInvalidArguments
	}
	return &tls.Config{
		RootCAs: pool,
	}, nil
}

// Generate - create a self-signed certificate and private key
//
// neither file may already exist
func Generate(name string, certificateFileName string, privateKeyFileName string, extraHosts []string) error {

	if util.EnsureFileExists(certificateFileName) {
		return fault.ErrCertificateFileExists
	}

	if util.EnsureFileExists(privateKeyFileName) {
		return fault.ErrKeyFileExists
	}

	org := "bookstored self signed cert for: " + name
	validUntil := time.Now().Add(validity)
	override := 0 != len(extraHosts)
	cert, key, err := certgen.NewTLSCertPair(org, validUntil, override, extraHosts)
	if err != nil {
		return err
	}

	if err = ioutil.WriteFile(certificateFileName, cert, 0666); err != nil {
		return err
	}

	if err = ioutil.WriteFile(privateKeyFileName, key, 0600); err != nil {
		_ = os.Remove(certificateFileName)
		return err
	}

	return nil
}

// Fingerprint - compute the fingerprint of a certificate
//
// FreeBSD: openssl x509 -outform DER -in ledgerd-rpc.crt | sha3sum -a 256
func Fingerprint(certificate []byte) [32]byte {
	return sha3.Sum256(certificate)
}

// FileFingerprint - fingerprint of the first certificate in a PEM file
func FileFingerprint(certificateFileName string) ([32]byte, error) {
	var fin [32]byte

	data, err := ioutil.ReadFile(certificateFileName)
	if nil != err {
		return fin, err
	}
	for {
		block, rest := pem.Decode(data)
		if nil == block {
			return fin, fault.ErrInvalidArguments
		}
		if "CERTIFICATE" == block.Type {
			return Fingerprint(block.Bytes), nil
		}
		data = rest
	}
}
