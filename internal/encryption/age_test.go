package encryption

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
	}{
		{name: "simple text", input: []byte("hello world")},
		{name: "empty", input: []byte{}},
		{name: "binary data", input: []byte{0x00, 0xff, 0x01, 0xfe}},
		{name: "large data", input: bytes.Repeat([]byte("abcdef"), 10000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			passphrase := "test-passphrase"

			var encrypted bytes.Buffer
			if err := EncryptWithPassphrase(bytes.NewReader(tt.input), &encrypted, passphrase); err != nil {
				t.Fatalf("EncryptWithPassphrase() error = %v", err)
			}

			// Encrypted output should differ from plaintext
			if len(tt.input) > 0 && bytes.Equal(encrypted.Bytes(), tt.input) {
				t.Error("encrypted output is identical to plaintext")
			}

			var decrypted bytes.Buffer
			if err := DecryptWithPassphrase(bytes.NewReader(encrypted.Bytes()), &decrypted, passphrase); err != nil {
				t.Fatalf("DecryptWithPassphrase() error = %v", err)
			}

			if !bytes.Equal(decrypted.Bytes(), tt.input) {
				t.Errorf("round-trip failed: got %d bytes, want %d bytes", decrypted.Len(), len(tt.input))
			}
		})
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	t.Parallel()

	var encrypted bytes.Buffer
	if err := EncryptWithPassphrase(bytes.NewReader([]byte("secret")), &encrypted, "correct-passphrase"); err != nil {
		t.Fatalf("EncryptWithPassphrase() error = %v", err)
	}

	var decrypted bytes.Buffer
	err := DecryptWithPassphrase(bytes.NewReader(encrypted.Bytes()), &decrypted, "wrong-passphrase")
	if err == nil {
		t.Error("DecryptWithPassphrase() with wrong passphrase should return error")
	}
	if decrypted.Len() != 0 {
		t.Errorf("wrote %d plaintext bytes despite wrong passphrase", decrypted.Len())
	}
}

func TestDecryptGarbageInput(t *testing.T) {
	t.Parallel()

	var decrypted bytes.Buffer
	err := DecryptWithPassphrase(bytes.NewReader([]byte("not an age file")), &decrypted, "passphrase")
	if err == nil {
		t.Error("DecryptWithPassphrase() on garbage input should return error")
	}
}
