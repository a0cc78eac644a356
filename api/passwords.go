package main

import "golang.org/x/crypto/bcrypt"

// hashPassword produces a salted bcrypt hash; the salt is randomized per call
// so the same password never hashes to the same stored value twice.
func hashPassword(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), 12)
}

// verifyPassword reports whether plaintext matches the stored hash. Malformed
// hashes simply fail verification; the comparison itself is constant time.
func verifyPassword(plaintext string, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}
