package fingerprint

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexKey = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestHashDeterministic(t *testing.T) {
	a := Hash("TypeError", "svc", "/a")
	b := Hash("TypeError", "svc", "/a")

	assert.Equal(t, a, b)
	assert.Regexp(t, hexKey, a)
}

func TestHashDistinguishesInputs(t *testing.T) {
	base := Hash("TypeError", "svc", "/a")

	assert.NotEqual(t, base, Hash("ValueError", "svc", "/a"))
	assert.NotEqual(t, base, Hash("TypeError", "other", "/a"))
	assert.NotEqual(t, base, Hash("TypeError", "svc", "/b"))
}

func TestHashSeparatorsPreventConcatenationCollisions(t *testing.T) {
	// "ab"+"c" must not group with "a"+"bc"
	assert.NotEqual(t, Hash("ab", "c", ""), Hash("a", "bc", ""))
}

func TestHashEmptyInputsValid(t *testing.T) {
	a := Hash("", "", "")
	b := Hash("", "", "")

	assert.Equal(t, a, b)
	assert.Regexp(t, hexKey, a)
}
