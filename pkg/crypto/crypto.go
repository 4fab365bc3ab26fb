package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"math/big"
)

func GenerateRandomString() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

// SeedInt64 returns a random value suitable for seeding a math/rand source.
func SeedInt64() int64 {
	r, err := rand.Int(rand.Reader, big.NewInt(1<<62))
	if err != nil {
		panic(err)
	}

	return r.Int64()
}
