package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/optchain/internal/compiler"
)

// LoadResult contains the results of loading specs from a directory.
type LoadResult struct {
	Specs     *compiler.Specs
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// DeclCount is the number of annotated declarations: functions plus
// annotated impl methods.
func (r *LoadResult) DeclCount() int {
	n := len(r.Specs.Fns)
	for _, b := range r.Specs.Impls {
		n += len(b.Declarations())
	}
	return n
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads the CUE package in dir and compiles its `fn` and `impl`
// roots. Compilation stops at the first malformed declaration; schema
// problems in well-formed declarations are left to compiler.Validate.
func LoadSpecs(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	if len(cueFiles) == 0 {
		return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	specs, err := compiler.CompileSpecs(value)
	if err != nil {
		return nil, convertCompileError(err)
	}
	if len(specs.Fns) == 0 && len(specs.Impls) == 0 {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "no fn or impl declarations found in specs"}
	}

	return &LoadResult{
		Specs:     specs,
		CUEValue:  value,
		FileCount: len(cueFiles),
	}, nil
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeCache       = "E008" // Cache database error
	ErrCodeConfig      = "E009" // Config file error
	ErrCodeUsage       = "E010" // Invalid flag value

	// Declaration compile errors
	ErrCodeParamPattern = "E101" // Missing or malformed parameter pattern
	ErrCodeTypeExpr     = "E102" // Malformed type expression
	ErrCodeGenerics     = "E103" // Malformed generics or where clause
	ErrCodeDefaultForm  = "E104" // Both default forms on one parameter
	ErrCodeImplSelf     = "E105" // Missing impl self type

	// Transformation
	ErrCodeRejected = "E300" // One or more declarations rejected with a diagnostic
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "params.pattern":
		return ErrCodeParamPattern
	case "params.type", "returns", "trait":
		return ErrCodeTypeExpr
	case "generics", "where":
		return ErrCodeGenerics
	case "params.optarg_default":
		return ErrCodeDefaultForm
	case "self":
		return ErrCodeImplSelf
	default:
		return ErrCodeGeneric
	}
}
