package encryption

// EncryptionResult holds the three parts produced by an engine. IV and Tag
// are empty for modes that do not use them.
type EncryptionResult struct {
	Ciphertext []byte
	IV         []byte
	Tag        []byte
}

// Combine returns IV ++ Tag ++ Ciphertext as a freshly allocated slice.
func (r *EncryptionResult) Combine() []byte {
	combined := make([]byte, 0, len(r.IV)+len(r.Tag)+len(r.Ciphertext))
	combined = append(combined, r.IV...)
	combined = append(combined, r.Tag...)
	combined = append(combined, r.Ciphertext...)
	return combined
}

// SplitCombined is the inverse of Combine. The returned result owns copies of
// the three regions and never aliases combined.
func SplitCombined(combined []byte, ivLen, tagLen int) (*EncryptionResult, error) {
	const op = "SplitCombined"

	if ivLen < 0 || tagLen < 0 {
		return nil, NewError(op, ErrInvalidArgument, "IV and tag lengths cannot be negative (iv=%d, tag=%d)", ivLen, tagLen)
	}
	// Compared without adding ivLen and tagLen, which may overflow
	if ivLen > len(combined) || tagLen > len(combined)-ivLen {
		return nil, NewError(op, ErrMalformedPayload, "combined payload too short for IV of %d and tag of %d bytes, got %d", ivLen, tagLen, len(combined))
	}

	iv := make([]byte, ivLen)
	copy(iv, combined[:ivLen])

	tag := make([]byte, tagLen)
	copy(tag, combined[ivLen:ivLen+tagLen])

	ciphertext := make([]byte, len(combined)-ivLen-tagLen)
	copy(ciphertext, combined[ivLen+tagLen:])

	return &EncryptionResult{
		Ciphertext: ciphertext,
		IV:         iv,
		Tag:        tag,
	}, nil
}

// Wipe zeroes every buffer held by r.
func (r *EncryptionResult) Wipe() {
	SecureZeroMultiple(r.Ciphertext, r.IV, r.Tag)
}
