package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
)

// Validate runs structural checks over result.Spec and, unless disabled,
// a kin-openapi validation pass whose failures are reported as warnings.
func (l *Loader) Validate(ctx context.Context, result *ParseResult) error {
	start := time.Now()
	defer func() {
		result.Metadata.ValidationTime = time.Since(start)
	}()

	if result.Spec == nil {
		return fmt.Errorf("no spec to validate")
	}

	spec := result.Spec
	result.Valid = true
	isV3 := spec.IsV3("")

	switch {
	case spec.OpenAPI == "" && spec.Swagger == "":
		result.addError("openapi", "OpenAPI or Swagger version is required", "MISSING_OPENAPI_VERSION")
	case spec.OpenAPI != "" && !strings.HasPrefix(spec.OpenAPI, "3.0") && !strings.HasPrefix(spec.OpenAPI, "3.1"):
		result.addWarning("openapi", fmt.Sprintf("Unsupported OpenAPI version: %s", spec.OpenAPI), "UNSUPPORTED_VERSION")
	case spec.OpenAPI == "" && spec.Swagger != "2.0":
		result.addWarning("swagger", fmt.Sprintf("Unsupported Swagger version: %s", spec.Swagger), "UNSUPPORTED_VERSION")
	}

	if spec.Info.Title == "" {
		result.addError("info.title", "API title is required", "MISSING_TITLE")
	}
	if spec.Info.Version == "" {
		result.addError("info.version", "API version is required", "MISSING_VERSION")
	}

	if spec.Paths.Len() == 0 {
		result.addWarning("paths", "No paths defined", "NO_PATHS")
	}

	for _, path := range spec.Paths.Keys() {
		item, _ := spec.Paths.Get(path)
		if !strings.HasPrefix(path, "/") {
			result.addError("paths."+path, "Path must start with /", "INVALID_PATH")
		}
		if item == nil {
			continue
		}
		for _, op := range item.Operations {
			validateOperation(fmt.Sprintf("paths.%s.%s", path, op.Method), op.Operation, result)
		}
	}

	schemas := spec.Schemas(isV3)
	section := "definitions"
	if isV3 {
		section = "components.schemas"
	}
	for _, name := range schemas.Keys() {
		schema, _ := schemas.Get(name)
		validateSchema(section+"."+name, schema, result)
	}

	if !l.config.SkipSchemaValidation && len(result.raw) > 0 {
		if err := validateWithKin(ctx, result.raw, isV3); err != nil {
			l.logger.Debug("schema_validation_failed", "error", err)
			result.addWarning("root", err.Error(), "SCHEMA_VALIDATION")
		}
	}

	return nil
}

func validateOperation(path string, op *Operation, result *ParseResult) {
	if op == nil {
		return
	}

	if op.OperationID == "" {
		result.addWarning(path+".operationId", "Operation ID is recommended", "MISSING_OPERATION_ID")
	}

	if op.Responses.Len() == 0 {
		result.addError(path+".responses", "At least one response is required", "MISSING_RESPONSES")
		return
	}

	for _, code := range op.Responses.Keys() {
		if strings.HasPrefix(code, "2") {
			return
		}
	}
	result.addWarning(path+".responses", "No success response (2xx) defined", "NO_SUCCESS_RESPONSE")
}

func validateSchema(path string, schema *Schema, result *ParseResult) {
	if schema == nil {
		return
	}

	if schema.TypeName() == "array" && schema.Items == nil {
		result.addError(path+".items", "Array schema must define items", "MISSING_ARRAY_ITEMS")
	}

	if schema.Ref != "" && !strings.HasPrefix(schema.Ref, "#/") {
		result.addWarning(path+".$ref", "External references are not resolved", "EXTERNAL_REFERENCE")
	}

	for _, name := range schema.Properties.Keys() {
		prop, _ := schema.Properties.Get(name)
		validateSchema(path+".properties."+name, prop, result)
	}
	if schema.Items != nil {
		validateSchema(path+".items", schema.Items, result)
	}
}

// validateWithKin validates the document with kin-openapi. Swagger 2
// documents are converted to OpenAPI 3 first.
func validateWithKin(ctx context.Context, data []byte, isV3 bool) error {
	if !isV3 {
		var doc2 openapi2.T
		if err := json.Unmarshal(data, &doc2); err != nil {
			return fmt.Errorf("swagger 2 decode: %w", err)
		}
		doc3, err := openapi2conv.ToV3(&doc2)
		if err != nil {
			return fmt.Errorf("swagger 2 conversion: %w", err)
		}
		if data, err = json.Marshal(doc3); err != nil {
			return fmt.Errorf("swagger 2 conversion: %w", err)
		}
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return err
	}
	return doc.Validate(ctx)
}

func (r *ParseResult) addError(path, message, code string) {
	r.Errors = append(r.Errors, ValidationError{Path: path, Message: message, Code: code})
	r.Valid = false
}

func (r *ParseResult) addWarning(path, message, code string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Path: path, Message: message, Code: code})
}
