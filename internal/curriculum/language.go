package curriculum

import (
	"fmt"
	"strings"
)

// theme is a literacy word theme. Each theme carries exactly BatchSize words,
// lowercase and accent-free so typed answers compare cleanly.
type theme struct {
	Name  string
	Words [BatchSize]string
}

// themes are the five fixed literacy themes. The day selects the theme via
// (day-1) mod 5, so themes rotate across the plan.
var themes = [5]theme{
	{Name: "animais", Words: [BatchSize]string{
		"gato", "pato", "vaca", "galo", "sapo", "urso", "lobo", "rato", "foca", "anta",
	}},
	{Name: "frutas", Words: [BatchSize]string{
		"uva", "pera", "manga", "caju", "banana", "goiaba", "abacaxi", "amora", "figo", "coco",
	}},
	{Name: "casa", Words: [BatchSize]string{
		"mesa", "cama", "porta", "janela", "copo", "prato", "panela", "vela", "tapete", "escada",
	}},
	{Name: "escola", Words: [BatchSize]string{
		"livro", "caderno", "giz", "mochila", "papel", "cola", "tesoura", "apontador", "borracha", "estojo",
	}},
	{Name: "natureza", Words: [BatchSize]string{
		"sol", "lua", "rio", "mar", "flor", "pedra", "areia", "chuva", "vento", "nuvem",
	}},
}

// themeForDay returns the literacy theme for the given plan day.
func themeForDay(day int) theme {
	if day < 1 {
		day = 1
	}
	return themes[(day-1)%len(themes)]
}

// splitWord divides a word into its first chunk and the rest. Vowel-initial
// words split after one letter, consonant-initial after two.
func splitWord(word string) (head, rest string) {
	r := []rune(word)
	n := 2
	if isVowel(r[0]) {
		n = 1
	}
	if n > len(r) {
		n = len(r)
	}
	return string(r[:n]), string(r[n:])
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// languageItem builds the (problem, answer) pair for one word under the
// given exercise kind.
func languageItem(kind LanguageKind, word string) (problem, answer string) {
	head, rest := splitWord(word)
	switch kind {
	case KindInitialSound:
		return fmt.Sprintf("Qual é o pedaço inicial de \"%s\"?", word), head
	case KindSyllable:
		return fmt.Sprintf("Complete a palavra: %s___ (%s)", head, word), rest
	case KindDecode:
		return fmt.Sprintf("Junte e escreva: %s + %s", head, rest), word
	case KindOrthography:
		return fmt.Sprintf("Escreva a palavra completa: %s%s", head, strings.Repeat("_", len([]rune(rest)))), word
	case KindCopy:
		return fmt.Sprintf("Leia e copie: %s", word), word
	default:
		return fmt.Sprintf("Leia e copie: %s", word), word
	}
}

// generateLanguage produces the base-ordered batch for a literacy round.
func generateLanguage(spec PhaseSpec) ([]string, []string) {
	th := themeForDay(spec.Day)
	problems := make([]string, 0, BatchSize)
	answers := make([]string, 0, BatchSize)
	for _, w := range th.Words {
		p, a := languageItem(spec.Kind, w)
		problems = append(problems, p)
		answers = append(answers, a)
	}
	return problems, answers
}
