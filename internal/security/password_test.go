package security

import (
	"bytes"
	"testing"
)

// Small parameters keep the key derivation fast in tests.
var testParams = Argon2Params{
	Time:    1,
	Memory:  8 * 1024,
	Threads: 1,
	KeyLen:  32,
	SaltLen: 16,
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPasswordWithParams("correct horse battery staple", testParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !bytes.HasPrefix(hash, []byte("$argon2id$v=19$")) {
		t.Fatalf("hash prefix = %q", hash[:20])
	}

	ok, err := VerifyPassword("correct horse battery staple", hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = VerifyPassword("wrong password", hash)
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestPasswordSaltIsRandom(t *testing.T) {
	a, err := HashPasswordWithParams("same password", testParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	b, err := HashPasswordWithParams("same password", testParams)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, h := range []string{
		"",
		"plainhash",
		"$bcrypt$whatever",
		"$argon2id$v=19$t=1,m=8192,p=1$onlysalt",
	} {
		if _, err := VerifyPassword("pw", []byte(h)); err == nil {
			t.Errorf("malformed hash %q accepted", h)
		}
	}
}
