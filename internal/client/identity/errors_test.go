package identity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderError_ConcurrentUnknownCodes(t *testing.T) {
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				e := providerError("SOME_NEW_CODE")
				assert.Equal(t, "Some New Code", e.Message)
			}
		}()
	}
	wg.Wait()
}

func TestProviderError_RefreshCodes(t *testing.T) {
	e := providerError("TOKEN_EXPIRED")
	assert.Equal(t, "TOKEN_EXPIRED", e.Code)
	assert.Equal(t, "Your session has expired. Please sign in again.", e.Message)

	e = providerError("INVALID_REFRESH_TOKEN")
	assert.Equal(t, "Your session has expired. Please sign in again.", e.Message)
}
