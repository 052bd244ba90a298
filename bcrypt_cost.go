//go:build !race

package kermesse

func passwordHashCost() int {
	return DefaultBcryptCost
}
