// Package slug genera identificadores URL-safe a partir de nombres de empresa.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make convierte "Padaria São João" en "padaria-sao-joao".
// Acentos se eliminan, espacios pasan a "-" y cualquier carácter fuera de [a-z0-9_-] se descarta.
func Make(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, name)
	if err != nil {
		plain = name
	}
	plain = strings.ToLower(strings.TrimSpace(plain))

	var b strings.Builder
	b.Grow(len(plain))
	for _, r := range plain {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WithSuffix devuelve base para n<=1 y "base-n" en otro caso; usado para resolver colisiones.
func WithSuffix(base string, n int) string {
	if n <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(n)
}
