package todo

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/retrotodo/internal/utils"
)

const listSchemaURL = "retrotodo://contract/list.json"

// ListSchema describes the list payload the client expects from GET /todos.
// The client tolerates payloads that fail it; the schema is used to tell a
// backend author what will degrade.
const ListSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id":      {"type": ["string", "number"]},
      "todo_id": {"type": ["string", "number"]},
      "_id":     {"type": ["string", "number"]},
      "text":    {"type": "string"},
      "title":   {"type": "string"},
      "task":    {"type": "string"}
    },
    "allOf": [
      {"anyOf": [{"required": ["id"]}, {"required": ["todo_id"]}, {"required": ["_id"]}]},
      {"anyOf": [{"required": ["text"]}, {"required": ["title"]}, {"required": ["task"]}]}
    ]
  }
}`

// ContractIssue is one schema violation found in a payload.
type ContractIssue struct {
	Path    string
	Message string
}

func (i ContractIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// ContractReport is the result of checking a list payload.
type ContractReport struct {
	Valid  bool
	Issues []ContractIssue
}

// CheckListContract validates a GET /todos payload against ListSchema.
// An error is returned only when the payload cannot be checked at all.
func CheckListContract(data []byte) (*ContractReport, error) {
	schema, err := compileListSchema()
	if err != nil {
		return nil, err
	}

	v, err := DecodeValue(data)
	if err != nil {
		return &ContractReport{
			Valid:  false,
			Issues: []ContractIssue{{Message: fmt.Sprintf("body is not JSON: %v", err)}},
		}, nil
	}

	report := &ContractReport{Valid: true}
	if err := schema.Validate(v); err != nil {
		report.Valid = false
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			report.Issues = append(report.Issues, ContractIssue{Message: err.Error()})
			return report, nil
		}
		collectIssues(report, ve)
	}
	return report, nil
}

func compileListSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(listSchemaURL, strings.NewReader(ListSchema)); err != nil {
		return nil, fmt.Errorf("load list schema: %w", err)
	}
	schema, err := compiler.Compile(listSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile list schema: %w", err)
	}
	return schema, nil
}

func collectIssues(report *ContractReport, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		report.Issues = append(report.Issues, ContractIssue{
			Path:    utils.JSONPointerToPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectIssues(report, cause)
	}
}
