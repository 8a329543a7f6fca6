package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-course/internal/content"
)

//go:embed lesson.schema.json
var lessonSchemaJSON []byte

//go:embed data/*.yaml
var bundled embed.FS

var lessonSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(lessonSchemaJSON))
})

// LoadEmbedded builds the catalog from the course content bundled with the binary.
func LoadEmbedded() (*Catalog, error) {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		return nil, fmt.Errorf("opening bundled content: %w", err)
	}
	c, err := loadFS(sub)
	if err != nil {
		return nil, err
	}
	logLoaded(c, "embedded")
	return c, nil
}

// LoadDir builds the catalog from the lesson YAML files under dir.
func LoadDir(dir string) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening content dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content path %s is not a directory", dir)
	}
	c, err := loadFS(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	logLoaded(c, dir)
	return c, nil
}

// LoadFS builds the catalog from every *.yaml or *.yml file in fsys.
// Each file holds one lesson.
func LoadFS(fsys fs.FS) (*Catalog, error) {
	return loadFS(fsys)
}

func loadFS(fsys fs.FS) (*Catalog, error) {
	lessons, err := readLessons(fsys)
	if err != nil {
		return nil, err
	}
	return New(lessons)
}

// readLessons decodes every lesson document in fsys. Document-level problems
// and catalog-level problems are reported together.
func readLessons(fsys fs.FS) ([]content.Lesson, error) {
	schema, err := lessonSchema()
	if err != nil {
		return nil, fmt.Errorf("compiling lesson schema: %w", err)
	}

	verr := &ValidationError{}
	var lessons []content.Lesson

	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isLessonFile(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}

		l, problems := decodeLesson(schema, data)
		for _, msg := range problems {
			verr.add("%s: %s", p, msg)
		}
		if len(problems) == 0 {
			lessons = append(lessons, l)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking content: %w", err)
	}

	var catErr *ValidationError
	if errors.As(Validate(lessons), &catErr) {
		verr.Problems = append(verr.Problems, catErr.Problems...)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return lessons, nil
}

func decodeLesson(schema *gojsonschema.Schema, data []byte) (content.Lesson, []string) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return content.Lesson{}, []string{fmt.Sprintf("invalid YAML: %v", err)}
	}

	res, err := schema.Validate(gojsonschema.NewGoLoader(raw))
	if err != nil {
		return content.Lesson{}, []string{fmt.Sprintf("schema check: %v", err)}
	}
	if !res.Valid() {
		problems := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			problems = append(problems, e.String())
		}
		return content.Lesson{}, problems
	}

	var doc lessonDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return content.Lesson{}, []string{fmt.Sprintf("decoding lesson: %v", err)}
	}
	l, err := doc.toLesson()
	if err != nil {
		return content.Lesson{}, []string{err.Error()}
	}
	return l, nil
}

func isLessonFile(p string) bool {
	if strings.HasPrefix(path.Base(p), ".") {
		return false
	}
	ext := path.Ext(p)
	return ext == ".yaml" || ext == ".yml"
}
