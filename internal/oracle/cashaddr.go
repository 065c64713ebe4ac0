package oracle

import (
	"errors"
	"fmt"
	"strings"
)

// Префиксы адресов
const (
	PrefixSLP = "simpleledger"
	PrefixBCH = "bitcoincash"
)

// Типы адресов (старшие биты байта версии)
const (
	TypeP2PKH byte = 0
	TypeP2SH  byte = 1
)

const cashCharset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Ошибки разбора адреса
var (
	ErrAddressCase     = errors.New("cashaddr: mixed case")
	ErrAddressChecksum = errors.New("cashaddr: invalid checksum")
	ErrAddressFormat   = errors.New("cashaddr: invalid format")
	ErrAddressPrefix   = errors.New("cashaddr: unknown prefix")
)

// Address - разобранный cashaddr
type Address struct {
	Prefix string
	Type   byte
	Hash   []byte
}

// String возвращает адрес с префиксом
func (a Address) String() string {
	s, _ := EncodeAddress(a.Prefix, a.Type, a.Hash)
	return s
}

var charsetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i, c := range cashCharset {
		rev[c] = int8(i)
	}
	return rev
}()

var hashSizeBits = map[int]byte{20: 0, 24: 1, 28: 2, 32: 3, 40: 4, 48: 5, 56: 6, 64: 7}

// EncodeAddress кодирует хэш в cashaddr с префиксом prefix
func EncodeAddress(prefix string, addrType byte, hash []byte) (string, error) {
	sizeBits, ok := hashSizeBits[len(hash)]
	if !ok {
		return "", fmt.Errorf("%w: hash length %d", ErrAddressFormat, len(hash))
	}
	prefix = strings.ToLower(prefix)

	payload := append([]byte{addrType<<3 | sizeBits}, hash...)
	data, err := convertBits(payload, 8, 5, true)
	if err != nil {
		return "", err
	}

	checksumInput := append(prefixData(prefix), data...)
	checksumInput = append(checksumInput, make([]byte, 8)...)
	mod := polymod(checksumInput)

	var sb strings.Builder
	sb.Grow(len(prefix) + 1 + len(data) + 8)
	sb.WriteString(prefix)
	sb.WriteByte(':')
	for _, d := range data {
		sb.WriteByte(cashCharset[d])
	}
	for i := 0; i < 8; i++ {
		sb.WriteByte(cashCharset[(mod>>(5*(7-i)))&31])
	}
	return sb.String(), nil
}

// DecodeAddress разбирает cashaddr. Без префикса пробуются simpleledger и bitcoincash.
func DecodeAddress(addr string) (Address, error) {
	lower := strings.ToLower(addr)
	if lower != addr && strings.ToUpper(addr) != addr {
		return Address{}, ErrAddressCase
	}

	if i := strings.LastIndexByte(lower, ':'); i >= 0 {
		prefix := lower[:i]
		if prefix != PrefixSLP && prefix != PrefixBCH {
			return Address{}, fmt.Errorf("%w: %q", ErrAddressPrefix, prefix)
		}
		return decodeWithPrefix(prefix, lower[i+1:])
	}

	var lastErr error
	for _, prefix := range []string{PrefixSLP, PrefixBCH} {
		a, err := decodeWithPrefix(prefix, lower)
		if err == nil {
			return a, nil
		}
		lastErr = err
	}
	return Address{}, lastErr
}

func decodeWithPrefix(prefix, body string) (Address, error) {
	if len(body) < 8+2 {
		return Address{}, ErrAddressFormat
	}

	data := make([]byte, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c >= 128 || charsetRev[c] < 0 {
			return Address{}, fmt.Errorf("%w: bad character %q", ErrAddressFormat, c)
		}
		data[i] = byte(charsetRev[c])
	}

	if polymod(append(prefixData(prefix), data...)) != 0 {
		return Address{}, ErrAddressChecksum
	}

	payload, err := convertBits(data[:len(data)-8], 5, 8, false)
	if err != nil {
		return Address{}, err
	}
	if len(payload) < 1 {
		return Address{}, ErrAddressFormat
	}

	version := payload[0]
	hash := payload[1:]
	if version&0x80 != 0 {
		return Address{}, fmt.Errorf("%w: reserved version bit", ErrAddressFormat)
	}
	if sizeBits, ok := hashSizeBits[len(hash)]; !ok || sizeBits != version&0x07 {
		return Address{}, fmt.Errorf("%w: hash size mismatch", ErrAddressFormat)
	}

	return Address{Prefix: prefix, Type: version >> 3, Hash: hash}, nil
}

// prefixData - младшие 5 бит символов префикса и разделитель 0
func prefixData(prefix string) []byte {
	out := make([]byte, 0, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		out = append(out, prefix[i]&0x1f)
	}
	return append(out, 0)
}

func polymod(values []byte) uint64 {
	c := uint64(1)
	for _, d := range values {
		c0 := byte(c >> 35)
		c = ((c & 0x07ffffffff) << 5) ^ uint64(d)
		if c0&0x01 != 0 {
			c ^= 0x98f2bc8e61
		}
		if c0&0x02 != 0 {
			c ^= 0x79b76d99e2
		}
		if c0&0x04 != 0 {
			c ^= 0xf33e5fb3c4
		}
		if c0&0x08 != 0 {
			c ^= 0xae2eabe2a8
		}
		if c0&0x10 != 0 {
			c ^= 0x1e4f43e470
		}
	}
	return c ^ 1
}

func convertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	var acc uint32
	var bits uint
	maxv := uint32(1)<<toBits - 1
	out := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)

	for _, v := range data {
		if uint32(v)>>fromBits != 0 {
			return nil, ErrAddressFormat
		}
		acc = acc<<fromBits | uint32(v)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}

	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, fmt.Errorf("%w: non-zero padding", ErrAddressFormat)
	}
	return out, nil
}
