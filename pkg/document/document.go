// Package document valida los documentos fiscales brasileños (CPF y CNPJ) por sus dígitos verificadores.
package document

import (
	"errors"
	"fmt"
	"unicode"
)

// pesos del primer dígito verificador del CNPJ; el segundo antepone un 6.
var cnpjWeights = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

var (
	ErrLength = errors.New("document: CPF debe tener 11 dígitos y CNPJ 14")
	ErrDigit  = errors.New("document: dígito verificador inválido")
)

// Validate acepta un CPF o un CNPJ, con o sin puntuación ("529.982.247-25", "11222333000181").
func Validate(doc string) error {
	switch d := Digits(doc); len(d) {
	case 11:
		return ValidateCPF(doc)
	case 14:
		return ValidateCNPJ(doc)
	default:
		return fmt.Errorf("%w: se encontraron %d", ErrLength, len(d))
	}
}

// ValidateCPF módulo 11 con pesos decrecientes 10..2 y 11..2.
func ValidateCPF(doc string) error {
	d := Digits(doc)
	if len(d) != 11 {
		return ErrLength
	}
	if repeated(d) {
		return ErrDigit
	}
	for n := 9; n <= 10; n++ {
		var sum int
		for i := 0; i < n; i++ {
			sum += int(d[i]-'0') * (n + 1 - i)
		}
		if byte('0'+(sum*10)%11%10) != d[n] {
			return ErrDigit
		}
	}
	return nil
}

// ValidateCNPJ módulo 11 con los pesos de la Receita Federal.
func ValidateCNPJ(doc string) error {
	d := Digits(doc)
	if len(d) != 14 {
		return ErrLength
	}
	if repeated(d) {
		return ErrDigit
	}
	for n := 12; n <= 13; n++ {
		var sum int
		for i := 0; i < n; i++ {
			w := 6
			if n == 12 {
				w = cnpjWeights[i]
			} else if i > 0 {
				w = cnpjWeights[i-1]
			}
			sum += int(d[i]-'0') * w
		}
		if byte('0'+checkDigit(sum)) != d[n] {
			return ErrDigit
		}
	}
	return nil
}

func checkDigit(sum int) int {
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}

// "111.111.111-11" pasa el módulo 11 pero la Receita no lo emite.
func repeated(d []byte) bool {
	for _, c := range d[1:] {
		if c != d[0] {
			return false
		}
	}
	return true
}

// Digits devuelve solo los dígitos del documento.
func Digits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
