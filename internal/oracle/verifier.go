package oracle

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // hash160 требует ripemd160

	"directory/internal/models"
	"directory/pkg/utils"
)

const messageMagic = "Bitcoin Signed Message:\n"

// Verifier проверяет подпись записи: подписанное сообщение - URL сайта (поле entry),
// ключ восстанавливается из compact-подписи и сравнивается с hash160 из slpAddress.
type Verifier struct{}

// NewVerifier создает Verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifySignature возвращает true, если подпись entry.Signature сделана ключом адреса entry.SlpAddress.
// Любая ошибка разбора трактуется как неверная подпись.
func (v *Verifier) VerifySignature(e *models.Entry) bool {
	if e == nil {
		return false
	}

	// поля проверяются до обрезки, при сохранении они будут обрезаны
	addr, err := DecodeAddress(strings.TrimSpace(e.SlpAddress))
	if err != nil || addr.Type != TypeP2PKH {
		utils.Debug("signature check: bad address", utils.Address(e.SlpAddress), utils.Err(err))
		return false
	}

	sig, err := base64.StdEncoding.DecodeString(strings.TrimSpace(e.Signature))
	if err != nil || len(sig) != 65 {
		return false
	}

	pub, compressed, err := ecdsa.RecoverCompact(sig, MessageDigest(e.Entry))
	if err != nil {
		return false
	}

	var serialized []byte
	if compressed {
		serialized = pub.SerializeCompressed()
	} else {
		serialized = pub.SerializeUncompressed()
	}

	return bytes.Equal(Hash160(serialized), addr.Hash)
}

// MessageDigest - double-sha256 от varstr(magic) || varstr(message)
func MessageDigest(message string) []byte {
	var buf bytes.Buffer
	writeVarString(&buf, messageMagic)
	writeVarString(&buf, message)

	first := sha256.Sum256(buf.Bytes())
	second := sha256.Sum256(first[:])
	return second[:]
}

// Hash160 - ripemd160(sha256(data))
func Hash160(data []byte) []byte {
	sum := sha256.Sum256(data)
	h := ripemd160.New()
	h.Write(sum[:])
	return h.Sum(nil)
}

func writeVarString(buf *bytes.Buffer, s string) {
	n := uint64(len(s))
	switch {
	case n < 0xfd:
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(0xfd)
		_ = binary.Write(buf, binary.LittleEndian, uint16(n))
	case n <= 0xffffffff:
		buf.WriteByte(0xfe)
		_ = binary.Write(buf, binary.LittleEndian, uint32(n))
	default:
		buf.WriteByte(0xff)
		_ = binary.Write(buf, binary.LittleEndian, n)
	}
	buf.WriteString(s)
}
