package messages

// Synthesis messages.
const (
	SynthPlaceholderFmt      = "%s: no addon declaration found; using placeholder"
	SynthNoShaderFmt         = "No compatible shader composition for %s; shaders stay disabled"
	SynthShaderSelectedFmt   = "Shader %s selected for %s"
	SynthShaderSuppressedFmt = "%s: another shader is active; disabling"
)
