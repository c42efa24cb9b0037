package password

import "testing"

func testConfig() Config {
	return Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashVerifyRoundTrip(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	hash, salt, err := hasher.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "" || salt == "" {
		t.Fatal("expected non-empty hash and salt")
	}

	ok, err := hasher.Verify("correct horse battery", hash, salt)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !ok {
		t.Fatal("expected matching password to verify")
	}

	ok, err = hasher.Verify("wrong password", hash, salt)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if ok {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	_, saltA, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	_, saltB, err := hasher.Hash("same password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if saltA == saltB {
		t.Fatal("two hashes of the same password must not share a salt")
	}
}

func TestHashRejectsEmptyPassword(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	if _, _, err := hasher.Hash(""); err == nil {
		t.Fatal("expected empty password to be rejected")
	}
}

func TestNewHasherEnforcesFloors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"low memory", Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"zero time", Config{Memory: 8192, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{"short salt", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32}},
		{"short key", Config{Memory: 8192, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8}},
	}

	for _, tc := range cases {
		if _, err := NewHasher(tc.cfg); err == nil {
			t.Fatalf("%s: expected config rejection", tc.name)
		}
	}
}

func TestVerifyRejectsBadEncodings(t *testing.T) {
	hasher, err := NewHasher(testConfig())
	if err != nil {
		t.Fatalf("NewHasher failed: %v", err)
	}

	if _, err := hasher.Verify("pw", "not-base64!!!", "c2FsdHNhbHRzYWx0c2FsdA=="); err == nil {
		t.Fatal("expected invalid hash encoding error")
	}
	if _, err := hasher.Verify("pw", "aGFzaA==", "!!"); err == nil {
		t.Fatal("expected invalid salt encoding error")
	}
}

func TestDigestHA1KnownVector(t *testing.T) {
	// RFC 2617 section 3.5 example: Mufasa / testrealm@host.com / Circle Of Life.
	got := DigestHA1("Mufasa", "testrealm@host.com", "Circle Of Life")
	want := "939e7578ed9e3c518a452acee763bce9"
	if got != want {
		t.Fatalf("HA1 mismatch: got %s want %s", got, want)
	}

	if !VerifyDigestHA1("Mufasa", "testrealm@host.com", "Circle Of Life", want) {
		t.Fatal("expected HA1 verification to pass")
	}
	if VerifyDigestHA1("Mufasa", "testrealm@host.com", "wrong", want) {
		t.Fatal("expected HA1 verification to fail for wrong password")
	}
}
