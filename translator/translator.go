package translator

import (
	"context"
	"fmt"
	"sync"

	gst "github.com/richinsley/goshadertranslator"
)

var (
	translator *gst.ShaderTranslator
	initErr    error
	initOnce   sync.Once
)

// GetTranslator lazily starts the shared shader translator.
func GetTranslator() (*gst.ShaderTranslator, error) {
	initOnce.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
	})
	return translator, initErr
}

// Fragment is a translated fragment shader.
type Fragment struct {
	Code string
	// Uniforms maps source uniform names to the names in Code.
	Uniforms map[string]string
}

// TranslateFragment converts a WebGL2 fragment source for desktop GL 4.1 or
// for GLES.
func TranslateFragment(source string, isGLES bool) (*Fragment, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, fmt.Errorf("failed to start shader translator: %w", err)
	}
	outputFormat := gst.OutputFormatGLSL410
	if isGLES {
		outputFormat = gst.OutputFormatESSL
	}
	fs, err := t.TranslateShader(source, "fragment", gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, fmt.Errorf("fragment shader translation failed: %w", err)
	}
	out := &Fragment{Code: fs.Code, Uniforms: make(map[string]string, len(fs.Variables))}
	for name, v := range fs.Variables {
		out.Uniforms[name] = v.MappedName
	}
	return out, nil
}
