package encryption

import (
	"fmt"
	"io"

	"filippo.io/age"
)

// EncryptWithPassphrase reads plaintext from r and writes age-encrypted
// ciphertext to w using age's scrypt-based passphrase encryption. Catalog
// backup archives leave the machine they were created on, so they are always
// sealed this way before being written out.
func EncryptWithPassphrase(r io.Reader, w io.Writer, passphrase string) error {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt recipient: %w", err)
	}

	encWriter, err := age.Encrypt(w, recipient)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}

	return nil
}

// DecryptWithPassphrase reads age-encrypted ciphertext from r and writes
// plaintext to w. A wrong passphrase surfaces as an error before any
// plaintext is written.
func DecryptWithPassphrase(r io.Reader, w io.Writer, passphrase string) error {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("creating scrypt identity: %w", err)
	}

	decReader, err := age.Decrypt(r, identity)
	if err != nil {
		return fmt.Errorf("decrypting data: %w", err)
	}

	if _, err := io.Copy(w, decReader); err != nil {
		return fmt.Errorf("reading decrypted data: %w", err)
	}

	return nil
}
