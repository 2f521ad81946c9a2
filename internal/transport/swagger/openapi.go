package swagger

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// ValidateDocument loads the OpenAPI document and validates it so a
// broken contract fails at startup instead of at the first /swagger
// visit.
func ValidateDocument(ctx context.Context, path string) error {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return fmt.Errorf("load openapi document: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return fmt.Errorf("validate openapi document: %w", err)
	}
	return nil
}
