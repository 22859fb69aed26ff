package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword hashes an admin password with bcrypt.  Costs outside the
// range bcrypt supports fall back to the library default instead of
// erroring, so a misconfigured BCRYPT_COST degrades rather than locks
// the seeding command out.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	return string(b), err
}

// VerifyPassword reports whether plain matches the stored bcrypt hash.
// Malformed hashes simply fail verification.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
