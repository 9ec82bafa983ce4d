package slug

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Base letters and their accented lowercase forms (Vietnamese and common
// Latin-1 accents).
var foldGroups = map[rune]string{
	'a': "àáảãạăằắẳẵặâầấẩẫậäå",
	'd': "đ",
	'e': "èéẻẽẹêềếểễệë",
	'i': "ìíỉĩịîïı",
	'o': "òóỏõọôồốổỗộơờớởỡợöø",
	'u': "ùúủũụưừứửữựûü",
	'y': "ỳýỷỹỵÿ",
	'c': "ç",
	'n': "ñ",
	's': "ş",
	'g': "ğ",
}

var fold = func() map[rune]rune {
	m := make(map[rune]rune)
	for base, variants := range foldGroups {
		for _, v := range variants {
			m[v] = base
		}
	}
	return m
}()

// Generate creates a URL-friendly slug from the given name.
//
//	"Áo Thun Nam"   -> "ao-thun-nam"
//	"Hello   World!" -> "hello-world"
func Generate(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	folded := strings.Map(func(r rune) rune {
		if b, ok := fold[r]; ok {
			return b
		}
		return r
	}, lower)
	return strings.Trim(nonAlnum.ReplaceAllString(folded, "-"), "-")
}

// ObjectKey builds a unique storage key for an uploaded file, e.g.
// "products/3f2a.../ao-thun-nam-1b9d6bcd.jpg". The extension of filename is
// kept, lowercased.
func ObjectKey(prefix, owner, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := Generate(strings.TrimSuffix(path.Base(filename), path.Ext(filename)))
	if base == "" {
		base = "file"
	}
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return path.Join(prefix, owner, base+"-"+suffix+ext)
}
