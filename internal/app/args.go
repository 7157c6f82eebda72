package app

import (
	"errors"
	"strings"
	"unicode"
)

var (
	errUnclosedQuote  = errors.New("unclosed quote in arguments")
	errQuoteNotSpaced = errors.New("closing quote must be followed by a space")
)

// closingQuotes returns the quotes that may close open, or false if open is not a quote.
func closingQuotes(open rune) (string, bool) {
	switch open {
	case '"':
		return `"`, true
	case '“':
		return `”"`, true
	case '”':
		return `”`, true
	case '„':
		return `“”"`, true
	}
	return "", false
}

// splitArgs splits a command line on whitespace. A word that starts with a
// double quote runs to its closing quote, and \ escapes a quote inside it.
// Every other character, including ' & ; < >, is literal.
func splitArgs(raw string) ([]string, error) {
	var args []string
	runes := []rune(raw)
	for i := 0; i < len(runes); {
		if unicode.IsSpace(runes[i]) {
			i++
			continue
		}

		closers, quoted := closingQuotes(runes[i])
		if !quoted {
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) {
				i++
			}
			args = append(args, string(runes[start:i]))
			continue
		}

		var word strings.Builder
		closed := false
		for i++; i < len(runes); i++ {
			r := runes[i]
			if r == '\\' && i+1 < len(runes) && (runes[i+1] == '\\' || strings.ContainsRune(closers, runes[i+1])) {
				i++
				word.WriteRune(runes[i])
				continue
			}
			if strings.ContainsRune(closers, r) {
				closed = true
				i++
				break
			}
			word.WriteRune(r)
		}
		if !closed {
			return nil, errUnclosedQuote
		}
		if i < len(runes) && !unicode.IsSpace(runes[i]) {
			return nil, errQuoteNotSpaced
		}
		args = append(args, word.String())
	}
	return args, nil
}
