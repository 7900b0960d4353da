package driven

// SecretCipher encrypts and decrypts secret strings. It has no knowledge of
// what the strings are for. Implementations must be safe for concurrent use.
type SecretCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, error)
}
