package toolmap

var knownTools = []string{
	"Claude Code", "GitHub Copilot", "Cursor", "ChatGPT Canvas", "v0", "Kiro", "Windsurf",
	"Google Jules", "Amazon Q Developer", "Lovable", "Aider", "Tabnine", "Bolt.new",
	"Augment Code", "Google Gemini Code Assist", "Replit Agent", "Zed", "OpenAI Codex CLI",
	"Devin", "Continue", "Claude Artifacts", "Sourcegraph Cody", "Cline", "OpenHands",
	"JetBrains AI Assistant", "Qodo Gen", "CodeRabbit", "Snyk Code", "Microsoft IntelliCode",
	"Sourcery", "Diffblue Cover", "Magic", "Supermaven", "Pieces", "Bito", "Mutable", "Sweep",
	"Menlo", "Phind", "Perplexity", "Factory", "Poolside", "Cosine Genie",
}

// aliases maps lower-case variations to canonical names.
var aliases = map[string]string{
	"gpt-4":          "ChatGPT Canvas",
	"gpt-4o":         "ChatGPT Canvas",
	"gpt-4-turbo":    "ChatGPT Canvas",
	"gpt-3.5":        "ChatGPT Canvas",
	"gpt-3":          "ChatGPT Canvas",
	"gpt-5":          "ChatGPT Canvas",
	"chatgpt":        "ChatGPT Canvas",
	"chatgpt canvas": "ChatGPT Canvas",
	"openai":         "ChatGPT Canvas",
	"openai codex":   "OpenAI Codex CLI",
	"codex":          "OpenAI Codex CLI",
	"gpt-5-codex":    "OpenAI Codex CLI",

	"claude":            "Claude Code",
	"claude 3":          "Claude Code",
	"claude 3.5":        "Claude Code",
	"claude 3.5 sonnet": "Claude Code",
	"claude 4":          "Claude Code",
	"claude 4 sonnet":   "Claude Code",
	"claude sonnet":     "Claude Code",
	"claude opus":       "Claude Code",
	"claude haiku":      "Claude Code",
	"claude canvas":     "Claude Code",
	"claude code":       "Claude Code",
	"anthropic":         "Claude Code",
	"claude artifacts":  "Claude Artifacts",

	"gemini":             "Google Gemini Code Assist",
	"gemini pro":         "Google Gemini Code Assist",
	"gemini ultra":       "Google Gemini Code Assist",
	"gemini code":        "Google Gemini Code Assist",
	"gemini 1.5":         "Google Gemini Code Assist",
	"gemini 2.0":         "Google Gemini Code Assist",
	"gemini code assist": "Google Gemini Code Assist",
	"google ai":          "Google Gemini Code Assist",
	"bard":               "Google Gemini Code Assist",
	"jules":              "Google Jules",
	"google jules":       "Google Jules",
	"project jules":      "Google Jules",

	"copilot":           "GitHub Copilot",
	"github copilot":    "GitHub Copilot",
	"copilot x":         "GitHub Copilot",
	"copilot chat":      "GitHub Copilot",
	"copilot workspace": "GitHub Copilot",
	"microsoft copilot": "GitHub Copilot",
	"vs code copilot":   "GitHub Copilot",

	"codewhisperer":        "Amazon Q Developer",
	"amazon q":             "Amazon Q Developer",
	"q developer":          "Amazon Q Developer",
	"aws codewhisperer":    "Amazon Q Developer",
	"amazon codewhisperer": "Amazon Q Developer",

	"replit":       "Replit Agent",
	"replit agent": "Replit Agent",
	"replit ai":    "Replit Agent",
	"ghostwriter":  "Replit Agent",

	"cognition":    "Devin",
	"cognition ai": "Devin",
	"devin":        "Devin",
	"devin ai":     "Devin",

	"cursor":        "Cursor",
	"cursor ai":     "Cursor",
	"cursor editor": "Cursor",

	"windsurf":         "Windsurf",
	"codeium":          "Windsurf",
	"codeium windsurf": "Windsurf",

	"v0":        "v0",
	"v0.dev":    "v0",
	"vercel v0": "v0",

	"aider":      "Aider",
	"aider chat": "Aider",

	"tabnine":    "Tabnine",
	"tabnine ai": "Tabnine",

	"cody":             "Sourcegraph Cody",
	"sourcegraph cody": "Sourcegraph Cody",
	"sourcegraph":      "Sourcegraph Cody",

	"continue":     "Continue",
	"continue dev": "Continue",
	"continue.dev": "Continue",

	"cline":      "Cline",
	"claude-dev": "Cline",
	"claude dev": "Cline",

	"openhands":  "OpenHands",
	"open hands": "OpenHands",
	"all hands":  "OpenHands",

	"jetbrains ai":           "JetBrains AI Assistant",
	"jetbrains ai assistant": "JetBrains AI Assistant",
	"intellij ai":            "JetBrains AI Assistant",
	"pycharm ai":             "JetBrains AI Assistant",
	"webstorm ai":            "JetBrains AI Assistant",

	"qodo":      "Qodo Gen",
	"qodo gen":  "Qodo Gen",
	"codiumai":  "Qodo Gen",
	"codium ai": "Qodo Gen",

	"coderabbit":  "CodeRabbit",
	"code rabbit": "CodeRabbit",

	"bolt":            "Bolt.new",
	"bolt.new":        "Bolt.new",
	"stackblitz bolt": "Bolt.new",

	"augment":      "Augment Code",
	"augment code": "Augment Code",
	"augment ai":   "Augment Code",

	"lovable":     "Lovable",
	"lovable.dev": "Lovable",
	"lovable ai":  "Lovable",

	"zed":        "Zed",
	"zed ai":     "Zed",
	"zed editor": "Zed",

	"kiro":    "Kiro",
	"kiro ai": "Kiro",

	"snyk":      "Snyk Code",
	"snyk code": "Snyk Code",

	"intellicode":               "Microsoft IntelliCode",
	"microsoft intellicode":     "Microsoft IntelliCode",
	"visual studio intellicode": "Microsoft IntelliCode",

	"sourcery":    "Sourcery",
	"sourcery ai": "Sourcery",

	"diffblue":       "Diffblue Cover",
	"diffblue cover": "Diffblue Cover",

	"magic":     "Magic",
	"magic.dev": "Magic",
	"magic ai":  "Magic",

	"supermaven":  "Supermaven",
	"super maven": "Supermaven",

	"pieces":                "Pieces",
	"pieces for developers": "Pieces",
	"pieces app":            "Pieces",

	"bito":    "Bito",
	"bito ai": "Bito",

	"mutable":    "Mutable",
	"mutable ai": "Mutable",

	"sweep":    "Sweep",
	"sweep ai": "Sweep",

	"menlo":          "Menlo",
	"menlo security": "Menlo",

	"phind":     "Phind",
	"phind.com": "Phind",

	"perplexity":    "Perplexity",
	"perplexity ai": "Perplexity",

	"factory":    "Factory",
	"factory ai": "Factory",

	"poolside":    "Poolside",
	"poolside ai": "Poolside",

	"cosine":       "Cosine Genie",
	"genie":        "Cosine Genie",
	"cosine genie": "Cosine Genie",
}

// categoryKeywords drives InferCategory; the first matching row wins.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"code-assistant", []string{"copilot", "codewhisperer", "tabnine", "kite"}},
	{"llm", []string{"gpt", "claude", "gemini", "llama", "mistral"}},
	{"image-generation", []string{"dall-e", "midjourney", "stable diffusion", "imagen"}},
	{"chat", []string{"chatgpt", "bard", "perplexity", "character.ai"}},
	{"autonomous-agent", []string{"devin", "cursor", "aider", "sweep"}},
}
