package types

// ImageMeta describes a persisted flash image.
type ImageMeta struct {
	Version  int      `json:"v"`
	Geometry Geometry `json:"geometry"`
	Digest   string   `json:"digest"` // BLAKE2b-256 of the plaintext image, hex
	Sealed   bool     `json:"sealed"`
	SavedAt  int64    `json:"saved_at"`
}

// Fingerprint returns the short display form of the image digest.
func (m ImageMeta) Fingerprint() string {
	if len(m.Digest) > 20 {
		return m.Digest[:20]
	}
	return m.Digest
}
