package fitsio

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
)

const blockSize = 2880
const lineSize = 80

// Header holds the parsed keyword records of a FITS header unit, grouped
// by value type the way nightlight's internal/fits.Header does.
type Header struct {
	Bools    map[string]bool
	Ints     map[string]int32
	Floats   map[string]float32
	Strings  map[string]string
	Dates    map[string]string
	Comments []string
	History  []string
	End      bool
	Length   int32
}

func newHeader() Header {
	return Header{
		Bools:   make(map[string]bool),
		Ints:    make(map[string]int32),
		Floats:  make(map[string]float32),
		Strings: make(map[string]string),
		Dates:   make(map[string]string),
	}
}

var headerLineRE = compileHeaderRE()

// compileHeaderRE builds the single regexp matching every FITS header
// line form: blank, HISTORY, COMMENT, END, or KEY = VALUE [/ comment].
func compileHeaderRE() *regexp.Regexp {
	white := `\s+`
	whiteOpt := `\s*`

	histLine := "HISTORY" + white + `(?P<H>.*)`
	commLine := "COMMENT" + white + `(?P<C>.*)`
	endLine := `(?P<E>END)` + whiteOpt

	key := `(?P<k>[A-Z0-9_-]+)`
	boo := `(?P<b>[TF])`
	inte := `(?P<i>[+-]?[0-9]+)`
	floa := `(?P<f>[+-]?[0-9]*\.[0-9]*(?:[ED][-+]?[0-9]+)?)`
	stri := `'(?P<s>[^']*)'`
	date := `(?P<d>[0-9]{1,4}-?[012][0-9]-?[0123][0-9]T[012][0-9]:?[0-5][0-9]:?[0-5][0-9].?[0-9]*)`
	val := "(?:" + boo + "|" + inte + "|" + floa + "|" + stri + "|" + date + ")"

	commOpt := `(?:/(?P<c>.*))?`
	keyLine := key + whiteOpt + "=" + whiteOpt + val + whiteOpt + commOpt

	return regexp.MustCompile("^(?:" + white + "|" + histLine + "|" + commLine + "|" + keyLine + "|" + endLine + ")$")
}

// readHeader consumes whole 2880-byte blocks from r until an END card is
// seen, parsing every 80-byte line with headerLineRE.
func readHeader(r io.Reader) (Header, error) {
	h := newHeader()
	buf := make([]byte, blockSize)

	for !h.End {
		n, err := io.ReadFull(r, buf)
		if err != nil || n != blockSize {
			return h, fmt.Errorf("fits: short header block: %w", err)
		}
		h.Length += int32(n)

		for line := 0; line < blockSize/lineSize && !h.End; line++ {
			raw := buf[line*lineSize : (line+1)*lineSize]
			m := headerLineRE.FindSubmatch(raw)
			if m == nil {
				continue // unparseable line ignored, as nightlight does
			}
			h.applyLine(headerLineRE.SubexpNames(), m)
		}
	}
	return h, nil
}

func (h *Header) applyLine(names []string, values [][]byte) {
	key := ""
	for i := 1; i < len(names); i++ {
		if values[i] == nil || len(names[i]) != 1 {
			continue
		}
		switch names[i][0] {
		case 'E':
			h.End = true
		case 'H':
			h.History = append(h.History, string(values[i]))
		case 'C':
			h.Comments = append(h.Comments, string(values[i]))
		case 'k':
			key = string(values[i])
		case 'b':
			if len(values[i]) > 0 {
				v := values[i][0]
				h.Bools[key] = v == 't' || v == 'T'
			}
		case 'i':
			if v, err := strconv.ParseInt(string(values[i]), 10, 64); err == nil {
				h.Ints[key] = int32(v)
			}
		case 'f':
			if v, err := strconv.ParseFloat(string(values[i]), 64); err == nil {
				h.Floats[key] = float32(v)
			}
		case 's':
			h.Strings[key] = string(values[i])
		case 'd':
			h.Dates[key] = string(values[i])
		}
	}
}

// popInt32 removes and returns an integer-valued key.
func (h *Header) popInt32(key string) (int32, bool) {
	v, ok := h.Ints[key]
	if ok {
		delete(h.Ints, key)
	}
	return v, ok
}

// popFloat32 removes and returns an int- or float-valued key as float32.
func (h *Header) popFloat32(key string) (float32, bool) {
	if v, ok := h.Ints[key]; ok {
		delete(h.Ints, key)
		return float32(v), true
	}
	if v, ok := h.Floats[key]; ok {
		delete(h.Floats, key)
		return v, true
	}
	return 0, false
}
