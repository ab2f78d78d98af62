package passhash

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHash_Verify_OK(t *testing.T) {
	t.Parallel()

	encoded, err := Hash("Abcdef1x", DefaultParams())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := Verify("Abcdef1x", encoded)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Verify("wrong-password", encoded)
	require.NoError(t, err)
	require.False(t, ok)
}

// Соль случайная: одинаковые пароли дают разные PHC-строки.
func TestHash_RandomSalt(t *testing.T) {
	t.Parallel()

	a, err := Hash("Abcdef1x", DefaultParams())
	require.NoError(t, err)
	b, err := Hash("Abcdef1x", DefaultParams())
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestHash_InvalidParams(t *testing.T) {
	t.Parallel()

	_, err := Hash("Abcdef1x", Params{})
	require.Error(t, err)
}

func TestVerify_MalformedHash(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"plain-bcrypt-like",
		"$argon2i$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$!!!$aGFzaA",
	}

	for _, enc := range cases {
		_, err := Verify("pw", enc)
		require.ErrorIs(t, err, ErrMalformedHash, "hash: %q", enc)
	}
}

// Параметры читаются из строки: хэш остаётся проверяемым после смены
// конфигурации сервиса.
func TestVerify_CustomParams(t *testing.T) {
	t.Parallel()

	p := Params{Memory: 16 * 1024, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
	encoded, err := Hash("Abcdef1x", p)
	require.NoError(t, err)

	ok, err := Verify("Abcdef1x", encoded)
	require.NoError(t, err)
	require.True(t, ok)
}
