// Package locale loads per-language disease information files and looks up
// records in them with per-field defaults.
package locale

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

var (
	// ErrDefaultLocale means the default locale file is missing or unreadable.
	// There is nothing further to fall back to.
	ErrDefaultLocale = errors.New("default locale unavailable")
	// ErrInvalidLocale means a locale file exists but cannot be parsed.
	ErrInvalidLocale = errors.New("invalid locale file")
)

var codePattern = regexp.MustCompile(`^[A-Za-z]{2,8}([-_][A-Za-z0-9]{1,8})*$`)

// Resolver maps language codes to locale files under a directory.
type Resolver struct {
	dir         string
	defaultLang string
	ext         string
	decode      func([]byte) (*Catalog, error)
	logger      *zap.Logger
}

// NewResolver creates a resolver for files named <lang>.<ext> in dir.
// Supported extensions are json, yaml and yml.
func NewResolver(dir, defaultLang, ext string, logger *zap.Logger) (*Resolver, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")

	var decode func([]byte) (*Catalog, error)
	switch ext {
	case "json":
		decode = decodeJSON
	case "yaml", "yml":
		decode = decodeYAML
	default:
		return nil, fmt.Errorf("unsupported locale extension %q", ext)
	}

	if !validCode(defaultLang) {
		return nil, fmt.Errorf("invalid default language %q", defaultLang)
	}

	return &Resolver{
		dir:         dir,
		defaultLang: defaultLang,
		ext:         ext,
		decode:      decode,
		logger:      logger.Named("locale"),
	}, nil
}

// DefaultLanguage returns the code served when a requested locale is missing.
func (r *Resolver) DefaultLanguage() string {
	return r.defaultLang
}

// Path returns the file a language code maps to.
func (r *Resolver) Path(lang string) string {
	return filepath.Join(r.dir, lang+"."+r.ext)
}

// Load reads the locale file for lang. A missing file, or a code that is not
// a plain language tag, falls back to the default language. The file is read
// on every call.
func (r *Resolver) Load(lang string) (*Catalog, error) {
	if lang != r.defaultLang && validCode(lang) {
		cat, err := r.read(lang)
		if err == nil {
			cat.Requested = lang
			return cat, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		r.logger.Debug("locale not found, using default",
			zap.String("requested", lang), zap.String("default", r.defaultLang))
	}

	cat, err := r.read(r.defaultLang)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefaultLocale, err)
	}
	cat.Requested = lang
	return cat, nil
}

// Negotiate picks the language to serve for an Accept-Language value. Tags are
// tried in preference order, each as given and then as its base language; the
// first one with a locale file wins. Otherwise the default language is
// returned with matched set to false. An empty value matches the default.
func (r *Resolver) Negotiate(acceptLanguage string) (lang string, matched bool) {
	acceptLanguage = strings.TrimSpace(acceptLanguage)
	if acceptLanguage == "" {
		return r.defaultLang, true
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		if validCode(acceptLanguage) && r.exists(acceptLanguage) {
			return acceptLanguage, true
		}
		return r.defaultLang, false
	}

	for _, tag := range tags {
		if tag == language.Und {
			continue
		}
		for _, code := range candidates(tag) {
			if r.exists(code) {
				return code, true
			}
		}
	}
	return r.defaultLang, false
}

func (r *Resolver) read(lang string) (*Catalog, error) {
	path := r.Path(lang)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cat, err := r.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrInvalidLocale, path, err)
	}
	cat.Language = lang
	return cat, nil
}

func (r *Resolver) exists(lang string) bool {
	info, err := os.Stat(r.Path(lang))
	return err == nil && !info.IsDir()
}

func candidates(tag language.Tag) []string {
	codes := []string{tag.String()}
	if base, conf := tag.Base(); conf != language.No && base.String() != codes[0] {
		codes = append(codes, base.String())
	}
	return codes
}

func validCode(code string) bool {
	return codePattern.MatchString(code)
}
