// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// argonParams are the argon2id cost settings encoded into every hash.
type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var currentArgon = argonParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const saltLength = 16

func (p argonParams) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
}

// argonDigest is a parsed PHC-format argon2id string.
type argonDigest struct {
	params argonParams
	salt   []byte
	key    []byte
}

func (d argonDigest) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		d.params.memory,
		d.params.time,
		d.params.threads,
		base64.RawStdEncoding.EncodeToString(d.salt),
		base64.RawStdEncoding.EncodeToString(d.key),
	)
}

func parseArgonDigest(encoded string) (argonDigest, error) {
	var d argonDigest

	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[1] != "argon2id" {
		return d, errors.New("malformed argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil {
		return d, fmt.Errorf("argon2id version: %w", err)
	}
	if version != argon2.Version {
		return d, fmt.Errorf("argon2id version %d not supported", version)
	}

	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d",
		&d.params.memory, &d.params.time, &d.params.threads); err != nil {
		return d, fmt.Errorf("argon2id params: %w", err)
	}

	var err error
	if d.salt, err = base64.RawStdEncoding.DecodeString(fields[4]); err != nil {
		return d, fmt.Errorf("argon2id salt: %w", err)
	}
	if d.key, err = base64.RawStdEncoding.DecodeString(fields[5]); err != nil {
		return d, fmt.Errorf("argon2id key: %w", err)
	}
	//nolint:gosec // G115: key length is a few dozen bytes
	d.params.keyLen = uint32(len(d.key))

	return d, nil
}

// CredentialScheme identifies how a stored credential was produced. Rows
// written before argon2id was introduced hold bcrypt hashes or, in the
// oldest cases, the raw password.
type CredentialScheme int

const (
	SchemeArgon2id CredentialScheme = iota
	SchemeBcrypt
	SchemePlaintext
)

func (s CredentialScheme) String() string {
	switch s {
	case SchemeArgon2id:
		return "argon2id"
	case SchemeBcrypt:
		return "bcrypt"
	default:
		return "plaintext"
	}
}

func DetectScheme(stored string) CredentialScheme {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		return SchemeArgon2id
	case strings.HasPrefix(stored, "$2a$"),
		strings.HasPrefix(stored, "$2b$"),
		strings.HasPrefix(stored, "$2y$"):
		return SchemeBcrypt
	default:
		return SchemePlaintext
	}
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	d := argonDigest{
		params: currentArgon,
		salt:   salt,
		key:    currentArgon.derive(password, salt),
	}
	return d.String(), nil
}

// VerifyPassword checks password against a stored credential of any
// supported scheme.
func VerifyPassword(password, stored string) (bool, error) {
	switch DetectScheme(stored) {
	case SchemeArgon2id:
		return verifyArgon2(password, stored)
	case SchemeBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("bcrypt compare: %w", err)
		}
		return true, nil
	default:
		return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1, nil
	}
}

func verifyArgon2(password, encoded string) (bool, error) {
	d, err := parseArgonDigest(encoded)
	if err != nil {
		return false, err
	}

	candidate := d.params.derive(password, d.salt)
	return subtle.ConstantTimeCompare(d.key, candidate) == 1, nil
}

// VerifyPasswordWithRehash verifies and, when the stored credential is a
// legacy scheme or uses outdated argon2 parameters, returns a fresh argon2id
// hash the caller must persist.
func VerifyPasswordWithRehash(password, stored string) (bool, string, error) {
	valid, err := VerifyPassword(password, stored)
	if err != nil || !valid {
		return false, "", err
	}

	if !needsRehash(stored) {
		return true, "", nil
	}

	upgraded, err := HashPassword(password)
	if err != nil {
		return true, "", fmt.Errorf("rehash password: %w", err)
	}
	return true, upgraded, nil
}

// dummyHash stands in for a missing credential so lookups of unknown
// emails still pay for one argon2id derivation.
var dummyHash = sync.OnceValue(func() string {
	hash, err := HashPassword("timing-equaliser")
	if err != nil {
		panic(fmt.Sprintf("security: dummy hash: %v", err))
	}
	return hash
})

// VerifyPasswordTimingSafe does the same amount of work whether or not a
// stored credential exists, so unknown emails cannot be told apart by
// response time.
func VerifyPasswordTimingSafe(
	password string,
	stored *string,
) (bool, string, error) {
	if stored == nil || *stored == "" {
		//nolint:errcheck // result discarded, the derivation is the point
		_, _ = verifyArgon2(password, dummyHash())
		return false, "", nil
	}

	return VerifyPasswordWithRehash(password, *stored)
}

func needsRehash(stored string) bool {
	if DetectScheme(stored) != SchemeArgon2id {
		return true
	}

	d, err := parseArgonDigest(stored)
	return err != nil || d.params != currentArgon
}
