package generated

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:generate go run github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen --config=oapi-codegen.yaml openapi.yaml

//go:embed openapi.yaml
var specYAML []byte

// SpecYAML возвращает исходный текст OpenAPI-контракта.
func SpecYAML() []byte {
	return specYAML
}

// GetSwagger разбирает встроенный OpenAPI-контракт.
// Каждый вызов возвращает новый документ, его можно изменять.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора OpenAPI-контракта: %w", err)
	}
	return doc, nil
}
