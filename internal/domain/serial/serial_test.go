package serial_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
	"github.com/jhoicas/Trazabilidad-api/internal/domain/serial"
)

// El serial es el contrato físico del sistema (se imprime y escanea); estos
// vectores exactos son el canario: si alguien altera el alfabeto, el ancho o
// el orden prefijo+secuencia, fallan de inmediato.
func TestEncode_VectoresExactos(t *testing.T) {
	cases := []struct {
		prefixNo int64
		seq      int64
		want     string
	}{
		{1, 1, "000100000001"},
		{31, 32, "000Z00000010"},
		{2, 1234, "00020000016J"},
		{serial.MaxPrefix, serial.MaxSequence, "ZZZZZZZZZZZZ"},
	}
	for _, c := range cases {
		got, err := serial.Encode(c.prefixNo, c.seq)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Encode(%d, %d)", c.prefixNo, c.seq)
		assert.Len(t, got, serial.Width, "el ancho debe ser fijo")
	}
}

func TestEncode_Determinista(t *testing.T) {
	a, err1 := serial.Encode(7, 99)
	b, err2 := serial.Encode(7, 99)
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, a, b, "el mismo input siempre produce el mismo serial")
}

func TestDecode_RoundTrip(t *testing.T) {
	for _, pair := range [][2]int64{{1, 1}, {1048575, 5}, {42, 1099511627775}} {
		s, err := serial.Encode(pair[0], pair[1])
		require.NoError(t, err)
		prefixNo, seq, err := serial.Decode(s)
		require.NoError(t, err)
		assert.Equal(t, pair[0], prefixNo)
		assert.Equal(t, pair[1], seq)
	}
}

func TestEncode_RangoConsecutivoSinColisiones(t *testing.T) {
	seen := make(map[string]struct{}, 2000)
	for prefixNo := int64(1); prefixNo <= 2; prefixNo++ {
		for seq := int64(1); seq <= 1000; seq++ {
			s, err := serial.Encode(prefixNo, seq)
			require.NoError(t, err)
			_, dup := seen[s]
			require.False(t, dup, "serial repetido: %s", s)
			seen[s] = struct{}{}
		}
	}
	assert.Len(t, seen, 2000)
}

func TestEncode_TechosDeSecuencia(t *testing.T) {
	_, err := serial.Encode(1, serial.MaxSequence+1)
	assert.True(t, errors.Is(err, domain.ErrSequenceExhausted), "secuencia por encima del techo")

	_, err = serial.Encode(serial.MaxPrefix+1, 1)
	assert.True(t, errors.Is(err, domain.ErrSequenceExhausted), "prefijo por encima del techo")

	_, err = serial.Encode(1, 0)
	assert.Error(t, err, "la secuencia arranca en 1")

	_, err = serial.Encode(1, serial.MaxSequence)
	assert.NoError(t, err, "el techo exacto todavía es válido")
}

func TestDecode_FormatoInvalido(t *testing.T) {
	for _, bad := range []string{
		"",
		"0001",              // ancho incorrecto
		"000100000001X",     // demasiado largo
		"000I00000001",      // 'I' no pertenece al alfabeto
		"000O00000001",      // 'O' tampoco
		"000L00000001",      // ni 'L'
		"000u00000001",      // minúsculas rechazadas
		"0001 0000001",      // espacio
	} {
		_, _, err := serial.Decode(bad)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput), "Decode(%q) debe rechazar", bad)
		assert.False(t, serial.IsValid(bad))
	}
	assert.True(t, serial.IsValid("000100000001"))
}
