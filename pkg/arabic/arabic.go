// Package arabic provides text normalization and Latin-to-Arabic
// transliteration. These are the only places script-specific rules live;
// import, search and display all route through them.
package arabic

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Normalize strips Arabic diacritical marks and folds letter variants so
// that spellings differing only in tashkeel or hamza placement compare
// equal. Idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	out, _ := NormalizeIndexed(s)
	return out
}

// NormalizeIndexed is Normalize plus an index table: idx[i] is the rune
// offset in the original string of the i-th normalized rune. Search uses
// the table to window snippets over the original text after matching
// against the normalized form.
func NormalizeIndexed(s string) (string, []int) {
	var b strings.Builder
	idx := make([]int, 0, len(s))
	i := 0
	for _, r := range s {
		folded, keep := foldRune(r)
		if keep {
			b.WriteRune(folded)
			idx = append(idx, i)
		}
		i++
	}
	return b.String(), idx
}

// foldRune maps a rune to its normalized form. The second return is false
// when the rune is dropped entirely (diacritics, tatweel, bare hamza).
func foldRune(r rune) (rune, bool) {
	switch {
	// Tashkeel and Quranic annotation marks.
	case r >= 0x0610 && r <= 0x061A,
		r >= 0x064B && r <= 0x065F,
		r == 0x0670,
		r >= 0x06D6 && r <= 0x06ED:
		return 0, false
	case r == 'ـ': // tatweel
		return 0, false
	case r == 'ء':
		return 0, false
	case r == 'أ', r == 'إ', r == 'آ', r == 'ٱ':
		return 'ا', true
	case r == 'ى', r == 'ئ':
		return 'ي', true
	case r == 'ة':
		return 'ه', true
	case r == 'ؤ':
		return 'و', true
	}
	return r, true
}

// sub is one transliteration rule. Rules form an ordered list, never a map:
// application order is longest pattern first, so whole-word entries beat
// the single-letter fallbacks they contain.
type sub struct {
	pattern     string
	replacement string
}

var subs = buildSubs()

func buildSubs() []sub {
	list := []sub{
		// Whole words and phrases.
		{"bismillah", "بسم الله"},
		{"alhamdulillah", "الحمد لله"},
		{"inshallah", "ان شاء الله"},
		{"ahlulbayt", "اهل البيت"},
		{"ahlulbait", "اهل البيت"},
		{"subhanallah", "سبحان الله"},
		{"astaghfirullah", "استغفر الله"},
		{"allahu akbar", "الله اكبر"},
		{"allah", "الله"},
		{"muhammad", "محمد"},
		{"rasulullah", "رسول الله"},
		{"rasul", "رسول"},
		{"quran", "قران"},
		{"hadith", "حديث"},
		{"hadeeth", "حديث"},
		{"sahih", "صحيح"},
		{"salaam", "سلام"},
		{"salam", "سلام"},
		{"imam", "امام"},
		{"islam", "اسلام"},
		{"iman", "ايمان"},
		{"ilm", "علم"},
		{"alim", "عالم"},
		{"dua", "دعاء"},
		{"salat", "صلاه"},
		{"zakat", "زكاه"},
		{"jannah", "جنه"},
		{"shaytan", "شيطان"},
		{"masjid", "مسجد"},
		{"sunnah", "سنه"},
		{"tawhid", "توحيد"},
		{"wilayah", "ولايه"},
		{"ziyarat", "زياره"},

		// Digraphs.
		{"kh", "خ"},
		{"gh", "غ"},
		{"sh", "ش"},
		{"th", "ث"},
		{"dh", "ذ"},
		{"aa", "ا"},
		{"ee", "ي"},
		{"oo", "و"},
		{"ou", "و"},
		{"ai", "اي"},

		// Arabizi digits.
		{"3", "ع"},
		{"7", "ح"},
		{"5", "خ"},
		{"9", "ص"},
		{"6", "ط"},
		{"2", "ا"},

		// Single-letter romanization; letters without a dedicated Arabic
		// counterpart map to the nearest phonetic letter.
		{"a", "ا"},
		{"b", "ب"},
		{"c", "ك"},
		{"d", "د"},
		{"e", "ي"},
		{"f", "ف"},
		{"g", "غ"},
		{"h", "ه"},
		{"i", "ي"},
		{"j", "ج"},
		{"k", "ك"},
		{"l", "ل"},
		{"m", "م"},
		{"n", "ن"},
		{"o", "و"},
		{"p", "ب"},
		{"q", "ق"},
		{"r", "ر"},
		{"s", "س"},
		{"t", "ت"},
		{"u", "و"},
		{"v", "ف"},
		{"w", "و"},
		{"x", "كس"},
		{"y", "ي"},
		{"z", "ز"},
		{"'", "ع"},
		{"`", "ع"},
	}
	// Longest pattern first; ties keep list order (stable).
	sort.SliceStable(list, func(i, j int) bool {
		return len(list[i].pattern) > len(list[j].pattern)
	})
	return list
}

// Transliterate converts romanized input to an Arabic string by applying
// the substitution table left to right, longest pattern first. Runes with
// no rule (spaces, punctuation) pass through unchanged.
func Transliterate(latin string) string {
	s := strings.ToLower(latin)
	var b strings.Builder
	for len(s) > 0 {
		matched := false
		for _, rule := range subs {
			if strings.HasPrefix(s, rule.pattern) {
				b.WriteString(rule.replacement)
				s = s[len(rule.pattern):]
				matched = true
				break
			}
		}
		if !matched {
			r, size := utf8.DecodeRuneInString(s)
			b.WriteRune(r)
			s = s[size:]
		}
	}
	return b.String()
}
