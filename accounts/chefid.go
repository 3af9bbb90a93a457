package accounts

import (
	"context"
	"fmt"
	"math/rand"

	"homedish/apperr"
)

const (
	shortAttempts = 25
	wideAttempts  = 25
)

// ChefIDChecker reports whether a chef identifier is already assigned.
type ChefIDChecker interface {
	ChefIDExists(ctx context.Context, chefID string) (bool, error)
}

// ChefIDAllocator draws chef-NNNN identifiers and falls back to chef-NNNNNN
// when the short space keeps colliding. It always terminates.
type ChefIDAllocator struct {
	checker ChefIDChecker
	intN    func(n int) int
}

func NewChefIDAllocator(checker ChefIDChecker) *ChefIDAllocator {
	return &ChefIDAllocator{checker: checker, intN: rand.Intn}
}

func (a *ChefIDAllocator) Allocate(ctx context.Context) (string, error) {
	spaces := []struct {
		min, max int
		attempts int
	}{
		{1000, 9999, shortAttempts},
		{100000, 999999, wideAttempts},
	}

	for _, sp := range spaces {
		for i := 0; i < sp.attempts; i++ {
			id := fmt.Sprintf("chef-%d", sp.min+a.intN(sp.max-sp.min+1))
			taken, err := a.checker.ChefIDExists(ctx, id)
			if err != nil {
				return "", apperr.Dependency("failed to check chef id", err)
			}
			if !taken {
				return id, nil
			}
		}
	}
	return "", apperr.Dependency("chef id space exhausted", nil)
}
