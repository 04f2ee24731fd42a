package zkvm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ReceiptVersion is the version of the receipt binary encoding.
const ReceiptVersion uint16 = 1

const receiptHeaderLen = 2 + 1 + ImageIDSize

var ErrMalformedReceipt = errors.New("malformed receipt")

// Receipt attests that the program ImageID ran and committed Journal.
// Assumptions lists the claims that were resolved while proving it.
type Receipt struct {
	ImageID     ImageID
	Profile     Profile
	Journal     []byte
	Assumptions []Claim
	Seal        []byte
}

// Claim returns the claim this receipt proves.
func (r *Receipt) Claim() Claim {
	return ClaimOf(r.ImageID, r.Journal)
}

// MarshalBinary encodes the receipt canonically:
//
//	version_u16_le || profile_u8 || image_id (32) ||
//	journal_len_u32_le || journal ||
//	claim_count_u16_le || claims (64 each) ||
//	seal_len_u32_le || seal
func (r *Receipt) MarshalBinary() ([]byte, error) {
	if !r.Profile.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrMalformedReceipt, r.Profile)
	}
	if len(r.Assumptions) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d assumptions", ErrMalformedReceipt, len(r.Assumptions))
	}
	if uint64(len(r.Journal)) > math.MaxUint32 || uint64(len(r.Seal)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: oversized field", ErrMalformedReceipt)
	}

	out := make([]byte, 0, receiptHeaderLen+4+len(r.Journal)+2+ClaimSize*len(r.Assumptions)+4+len(r.Seal))
	out = binary.LittleEndian.AppendUint16(out, ReceiptVersion)
	out = append(out, byte(r.Profile))
	out = append(out, r.ImageID[:]...)

	out = binary.LittleEndian.AppendUint32(out, uint32(len(r.Journal)))
	out = append(out, r.Journal...)

	out = binary.LittleEndian.AppendUint16(out, uint16(len(r.Assumptions)))
	for _, c := range r.Assumptions {
		out = c.appendTo(out)
	}

	out = binary.LittleEndian.AppendUint32(out, uint32(len(r.Seal)))
	out = append(out, r.Seal...)
	return out, nil
}

// UnmarshalBinary decodes a receipt produced by MarshalBinary. Truncated input,
// trailing bytes, an unknown version and an unknown profile are all malformed.
func (r *Receipt) UnmarshalBinary(in []byte) error {
	d := decoder{in: in}

	if v := d.u16(); d.err == nil && v != ReceiptVersion {
		return fmt.Errorf("%w: version %d", ErrMalformedReceipt, v)
	}
	profile := Profile(d.u8())
	if d.err == nil && !profile.Valid() {
		return fmt.Errorf("%w: profile %d", ErrMalformedReceipt, uint8(profile))
	}

	var image ImageID
	copy(image[:], d.bytes(ImageIDSize))

	journal := d.bytes(int(d.u32()))

	count := int(d.u16())
	var claims []Claim
	if d.err == nil && count > 0 {
		claims = make([]Claim, 0, min(count, len(in)/ClaimSize))
	}
	for i := 0; i < count && d.err == nil; i++ {
		var c Claim
		copy(c.ImageID[:], d.bytes(ImageIDSize))
		copy(c.JournalDigest[:], d.bytes(len(c.JournalDigest)))
		claims = append(claims, c)
	}

	seal := d.bytes(int(d.u32()))
	if d.err != nil {
		return d.err
	}
	if d.off != len(in) {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformedReceipt, len(in)-d.off)
	}

	*r = Receipt{
		ImageID:     image,
		Profile:     profile,
		Journal:     append([]byte(nil), journal...),
		Assumptions: claims,
		Seal:        append([]byte(nil), seal...),
	}
	return nil
}

// decoder reads little-endian fields and keeps the first error.
type decoder struct {
	in  []byte
	off int
	err error
}

func (d *decoder) bytes(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.in)-d.off < n {
		d.err = fmt.Errorf("%w: truncated at offset %d", ErrMalformedReceipt, d.off)
		return nil
	}
	b := d.in[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	if b := d.bytes(1); b != nil {
		return b[0]
	}
	return 0
}

func (d *decoder) u16() uint16 {
	if b := d.bytes(2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (d *decoder) u32() uint32 {
	if b := d.bytes(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}
