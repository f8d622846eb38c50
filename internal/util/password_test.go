package util

import "testing"

func TestDeriveAndVerifyPassword(t *testing.T) {
	hash, salt, err := DerivePassword("tr4vel-Secret!")
	if err != nil {
		t.Fatalf("DerivePassword returned error: %v", err)
	}
	if len(hash) == 0 || len(salt) == 0 {
		t.Fatalf("expected hash and salt to be populated")
	}
	if !VerifyPassword("tr4vel-Secret!", salt, hash) {
		t.Fatalf("expected password verification to succeed")
	}
	if VerifyPassword("wrong-pass", salt, hash) {
		t.Fatalf("expected password verification to fail for wrong password")
	}
}

func TestDerivePasswordUniqueSalts(t *testing.T) {
	_, saltA, err := DerivePassword("tr4vel-Secret!")
	if err != nil {
		t.Fatalf("DerivePassword returned error: %v", err)
	}
	_, saltB, err := DerivePassword("tr4vel-Secret!")
	if err != nil {
		t.Fatalf("DerivePassword returned error: %v", err)
	}
	if string(saltA) == string(saltB) {
		t.Fatal("expected a fresh salt per derivation")
	}
}

func TestHashPasswordEmptyInput(t *testing.T) {
	if _, err := HashPassword("", []byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error when password empty")
	}
	if _, err := HashPassword("secret", nil); err == nil {
		t.Fatalf("expected error when salt empty")
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Str0ng!Passw0rd", true},
		{"short", false},
		{"alllowercase1!aa", false},
		{"ALLUPPERCASE1!AA", false},
		{"NoDigitsHere!!aa", false},
		{"NoSymbolsHere123", false},
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if tc.ok && err != nil {
			t.Fatalf("expected %q to pass, got %v", tc.password, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("expected %q to be rejected", tc.password)
		}
	}
}
