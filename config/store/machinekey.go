// Copyright (c) 2025 Asher Buk
// SPDX-License-Identifier: MIT

package store

import (
	"net"
	"os"

	"golang.org/x/crypto/pbkdf2"
	"crypto/sha256"
)

// machineIdentifier returns the stable-ish per-machine strings the secret
// key is derived from (spec §4.1 "machine-bound key derivation"): hostname,
// invoking user, and the first non-loopback MAC address it finds. None of
// these are secret; the derivation only needs them to be stable across
// restarts on the same box, not unguessable.
func machineIdentifier() string {
	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	mac := firstMACAddress()
	return host + "|" + user + "|" + mac
}

func firstMACAddress() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(iface.HardwareAddr) == 0 {
			continue
		}
		return iface.HardwareAddr.String()
	}
	return ""
}

const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLength  = 32 // AES-256
)

// deriveMachineKey derives a symmetric key from stable machine identifiers.
// The salt is fixed and non-secret: the security property this provides is
// "this config can't be read after being copied to another machine", not
// resistance to an attacker with local access.
func deriveMachineKey() []byte {
	salt := []byte("sonicinput-config-store-v1")
	return pbkdf2.Key([]byte(machineIdentifier()), salt, pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
}
