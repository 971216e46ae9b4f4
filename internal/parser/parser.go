package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	stderrors "errors" // Standard errors package

	"go.uber.org/zap"

	"github.com/partner-up-dev/fclayer/internal/errors" // Custom errors package
	"github.com/partner-up-dev/fclayer/internal/logging"
	"github.com/partner-up-dev/fclayer/internal/models"
)

// Result is a decoded payload together with where it was found.
type Result struct {
	Value models.JSONValue
	// Offset is the byte offset in the raw text where the JSON value starts.
	Offset int
	// Trailing holds non-whitespace text left after the value, if any.
	Trailing string
}

// Extractor locates and decodes the JSON value in command output.
//
// By default it tolerates log noise before and after the JSON value, since
// `s cli ... -o json` still prints log lines to stdout. Strict mode requires
// the text to be exactly one JSON value, which is useful for fixtures.
type Extractor struct {
	Strict bool
	Logger *zap.Logger
}

// NewExtractor creates a new Extractor instance
func NewExtractor(logger *zap.Logger, strict bool) *Extractor {
	return &Extractor{Strict: strict, Logger: logging.OrNop(logger)}
}

// Extract returns the JSON value embedded in raw.
func (e *Extractor) Extract(raw string) (models.JSONValue, error) {
	res, err := e.ExtractResult(raw)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// ExtractResult is Extract, but also reports the value's offset and any
// trailing text.
func (e *Extractor) ExtractResult(raw string) (Result, error) {
	logger := logging.OrNop(e.Logger)

	if strings.TrimSpace(raw) == "" {
		return Result{}, errors.NewDecodeError("input is empty", errors.ErrEmptyInput)
	}

	var (
		res Result
		err error
	)
	if e.Strict {
		res, err = decodeStrict(raw)
	} else {
		res, err = decodeTolerant(raw)
	}
	if err != nil {
		logger.Error("failed to parse JSON payload", zap.String("raw", raw), zap.Error(err))
		return Result{}, err
	}

	if res.Trailing != "" {
		logger.Warn("trailing non-JSON output detected", zap.String("trailing", res.Trailing))
	}
	return res, nil
}

// decodeTolerant tries every '[' and '{' in raw, in order, and keeps the first
// offset that decodes to a complete JSON value.
func decodeTolerant(raw string) (Result, error) {
	starts := candidateStarts(raw)
	if len(starts) == 0 {
		return Result{}, errors.NewDecodeError("failed to find JSON start in command output", errors.ErrNoJSONStart)
	}

	var lastErr error
	for _, start := range starts {
		text, moved := quoteNonFinite(raw[start:])
		dec := newDecoder(text)
		value, err := decodeValue(dec)
		if err != nil {
			lastErr = err
			continue
		}
		end := start + moved.original(int(dec.InputOffset()))
		return Result{
			Value:    value,
			Offset:   start,
			Trailing: strings.TrimSpace(raw[end:]),
		}, nil
	}

	return Result{}, errors.NewDecodeError("unable to decode JSON at any candidate offset", describe(lastErr))
}

func decodeStrict(raw string) (Result, error) {
	text, moved := quoteNonFinite(raw)
	dec := newDecoder(text)
	value, err := decodeValue(dec)
	if err != nil {
		return Result{}, errors.NewDecodeError("failed to decode JSON", describe(err))
	}
	if _, err := dec.Token(); err != io.EOF {
		return Result{}, errors.NewDecodeError(
			fmt.Sprintf("extra data at offset %d", moved.original(int(dec.InputOffset()))),
			errors.ErrMultipleJSON,
		)
	}
	return Result{Value: value}, nil
}

func candidateStarts(raw string) []int {
	var starts []int
	for _, token := range []string{"[", "{"} {
		pos := 0
		for {
			i := strings.Index(raw[pos:], token)
			if i < 0 {
				break
			}
			starts = append(starts, pos+i)
			pos += i + 1
		}
	}
	sort.Ints(starts)
	return starts
}

func newDecoder(s string) *json.Decoder {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber() // Ensure numbers are read as json.Number
	return dec
}

// decodeValue reads one JSON value token by token so that object keys keep
// their document order.
func decodeValue(dec *json.Decoder) (models.JSONValue, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		if s, isString := tok.(string); isString {
			if f, nonFinite := nonFiniteValue(s); nonFinite {
				return f, nil
			}
		}
		return tok, nil // string, json.Number, bool or nil
	}

	switch delim {
	case '{':
		obj := models.NewJSONObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("object key is %T, not a string", keyTok)
			}
			if _, nonFinite := nonFiniteValue(key); nonFinite {
				return nil, fmt.Errorf("object key is a bare %s literal", strings.TrimPrefix(key, nonFiniteMarker))
			}
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(key, value)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := models.JSONArray{}
		for dec.More() {
			value, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, value)
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, err
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %q", rune(delim))
	}
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if got, ok := tok.(json.Delim); !ok || got != want {
		return fmt.Errorf("expected %q, got %v", rune(want), tok)
	}
	return nil
}

// describe wraps decoder errors so that callers can match ErrInvalidJSON while
// keeping the offset in the message.
func describe(err error) error {
	if err == nil {
		return errors.ErrInvalidJSON
	}
	var syntaxError *json.SyntaxError
	if stderrors.As(err, &syntaxError) {
		return fmt.Errorf("%w: syntax error at offset %d: %v", errors.ErrInvalidJSON, syntaxError.Offset, syntaxError)
	}
	if stderrors.Is(err, io.EOF) || stderrors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: unexpected end of input", errors.ErrInvalidJSON)
	}
	return fmt.Errorf("%w: %v", errors.ErrInvalidJSON, err)
}

// ReadFile reads a captured `s cli fc3 layer versions -o json` payload.
func ReadFile(filePath string) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", errors.NewInputError("file path is empty", errors.ErrFileNotFound)
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return "", errors.NewInputError(fmt.Sprintf("failed to read file '%s'", filePath), err)
	}
	if len(data) == 0 {
		return "", errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}
	return string(data), nil
}
