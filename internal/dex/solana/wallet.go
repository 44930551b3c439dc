package solana

import (
	"errors"
	"os"

	solana "github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

// LoadPrivateKey returns the key from configured when set, falling back to
// SOLANA_PRIVATE_KEY_BASE58 from the environment or a .env file.
func LoadPrivateKey(configured string) (solana.PrivateKey, error) {
	if configured != "" {
		return solana.PrivateKeyFromBase58(configured)
	}
	return LoadPrivateKeyFromEnv()
}

// LoadPrivateKeyFromEnv reads SOLANA_PRIVATE_KEY_BASE58.
func LoadPrivateKeyFromEnv() (solana.PrivateKey, error) {
	_ = godotenv.Load() // best-effort
	b58 := os.Getenv("SOLANA_PRIVATE_KEY_BASE58")
	if b58 == "" {
		return nil, errors.New("SOLANA_PRIVATE_KEY_BASE58 not set")
	}
	return solana.PrivateKeyFromBase58(b58)
}
