// Package serial implementa el formato de los seriales de unidad.
//
// Un serial es el contrato bit-exacto de este núcleo: se imprime en etiquetas
// de código de barras y se escanea físicamente, así que su formato no puede
// renegociarse después de emitido. Formato: 12 caracteres de ancho fijo,
// mayúsculas alfanuméricas sobre un alfabeto base-32 sin caracteres ambiguos
// (se excluyen I, L, O y U). Los primeros 4 caracteres codifican la identidad
// global del producto (PrefixNo) y los 8 restantes el valor de secuencia por
// producto, por lo que dos productos distintos jamás comparten seriales.
package serial

import (
	"fmt"
	"strings"

	"github.com/jhoicas/Trazabilidad-api/internal/domain"
)

// Alphabet es el alfabeto base-32 de los seriales (estilo Crockford).
const Alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	base        = int64(len(Alphabet)) // 32
	PrefixWidth = 4
	SeqWidth    = 8
	Width       = PrefixWidth + SeqWidth // 12
)

// Techos numéricos documentados del generador. Superarlos produce
// domain.ErrSequenceExhausted; por debajo de ellos Encode no falla.
const (
	MaxPrefix   = int64(1)<<(5*PrefixWidth) - 1 // 32^4 − 1 = 1 048 575 productos
	MaxSequence = int64(1)<<(5*SeqWidth) - 1    // 32^8 − 1 ≈ 1.1e12 unidades por producto
)

// Encode produce el serial de ancho fijo para un producto (prefixNo) y un valor
// de secuencia. Ambos deben ser >= 1 y no exceder su techo.
func Encode(prefixNo, seq int64) (string, error) {
	if prefixNo < 1 || prefixNo > MaxPrefix {
		return "", fmt.Errorf("prefijo %d fuera de rango: %w", prefixNo, domain.ErrSequenceExhausted)
	}
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("secuencia %d fuera de rango: %w", seq, domain.ErrSequenceExhausted)
	}
	return encodeFixed(prefixNo, PrefixWidth) + encodeFixed(seq, SeqWidth), nil
}

// Decode recupera (prefixNo, seq) desde un serial. Falla con ErrInvalidInput
// si el ancho o algún carácter no pertenecen al formato.
func Decode(s string) (prefixNo, seq int64, err error) {
	if len(s) != Width {
		return 0, 0, fmt.Errorf("serial %q: ancho inválido: %w", s, domain.ErrInvalidInput)
	}
	prefixNo, err = decodeFixed(s[:PrefixWidth])
	if err != nil {
		return 0, 0, fmt.Errorf("serial %q: %w", s, err)
	}
	seq, err = decodeFixed(s[PrefixWidth:])
	if err != nil {
		return 0, 0, fmt.Errorf("serial %q: %w", s, err)
	}
	return prefixNo, seq, nil
}

// IsValid indica si s tiene el ancho y el alfabeto del formato.
func IsValid(s string) bool {
	_, _, err := Decode(s)
	return err == nil
}

func encodeFixed(n int64, width int) string {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = Alphabet[n%base]
		n /= base
	}
	return string(buf)
}

func decodeFixed(s string) (int64, error) {
	var n int64
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(Alphabet, s[i])
		if idx < 0 {
			return 0, fmt.Errorf("carácter %q fuera del alfabeto: %w", s[i], domain.ErrInvalidInput)
		}
		n = n*base + int64(idx)
	}
	return n, nil
}
