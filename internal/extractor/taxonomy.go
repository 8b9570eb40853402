package extractor

// TechnologyCategory is one entry of the fixed technology taxonomy.
// Keywords are matched on word boundaries; multi-word phrases are listed
// first so they win over their constituent single words.
type TechnologyCategory struct {
	// Name is the canonical technology name.
	Name string
	// Keywords trigger detection of this category.
	Keywords []string
	// Weight scales the category's detection score.
	Weight float64
	// Domain is the broader area the technology belongs to.
	Domain string
	// Implies lists background knowledge implied by this technology,
	// used for explanation text only.
	Implies []string
}

// defaultTaxonomy is the fixed technology taxonomy. Order is not
// significant; phrase-before-word ordering is handled per category.
func defaultTaxonomy() []TechnologyCategory {
	return []TechnologyCategory{
		{Name: "javascript", Keywords: []string{"javascript", "js", "ecmascript"}, Weight: 1.0, Domain: "web"},
		{Name: "typescript", Keywords: []string{"typescript", "ts"}, Weight: 1.0, Domain: "web", Implies: []string{"javascript knowledge"}},
		{Name: "python", Keywords: []string{"python", "py"}, Weight: 1.0, Domain: "general"},
		{Name: "java", Keywords: []string{"java"}, Weight: 1.0, Domain: "general"},
		{Name: "go", Keywords: []string{"golang", "go"}, Weight: 1.0, Domain: "general"},
		{Name: "rust", Keywords: []string{"rust"}, Weight: 1.0, Domain: "systems"},
		{Name: "ruby", Keywords: []string{"ruby", "rails", "ruby on rails"}, Weight: 0.9, Domain: "web"},
		{Name: "php", Keywords: []string{"php", "laravel"}, Weight: 0.9, Domain: "web"},
		{Name: "c#", Keywords: []string{"c#", "csharp", "dotnet", ".net"}, Weight: 0.9, Domain: "general"},
		{Name: "react", Keywords: []string{"react native", "react", "reactjs", "nextjs", "next.js"}, Weight: 1.0, Domain: "frontend", Implies: []string{"javascript/typescript knowledge"}},
		{Name: "vue", Keywords: []string{"vuejs", "vue", "nuxt"}, Weight: 1.0, Domain: "frontend", Implies: []string{"javascript/typescript knowledge"}},
		{Name: "angular", Keywords: []string{"angular"}, Weight: 1.0, Domain: "frontend", Implies: []string{"typescript knowledge"}},
		{Name: "svelte", Keywords: []string{"svelte", "sveltekit"}, Weight: 0.9, Domain: "frontend", Implies: []string{"javascript/typescript knowledge"}},
		{Name: "nodejs", Keywords: []string{"node.js", "nodejs", "node", "express"}, Weight: 1.0, Domain: "backend", Implies: []string{"javascript knowledge"}},
		{Name: "django", Keywords: []string{"django"}, Weight: 1.0, Domain: "backend", Implies: []string{"python knowledge"}},
		{Name: "flask", Keywords: []string{"flask"}, Weight: 1.0, Domain: "backend", Implies: []string{"python knowledge"}},
		{Name: "fastapi", Keywords: []string{"fastapi"}, Weight: 0.9, Domain: "backend", Implies: []string{"python knowledge"}},
		{Name: "spring", Keywords: []string{"spring boot", "spring"}, Weight: 0.9, Domain: "backend", Implies: []string{"java knowledge"}},
		{Name: "kubernetes", Keywords: []string{"kubernetes", "k8s", "helm"}, Weight: 1.0, Domain: "infrastructure", Implies: []string{"container fundamentals"}},
		{Name: "docker", Keywords: []string{"docker", "containers", "container"}, Weight: 1.0, Domain: "infrastructure"},
		{Name: "terraform", Keywords: []string{"terraform", "infrastructure as code"}, Weight: 0.9, Domain: "infrastructure"},
		{Name: "aws", Keywords: []string{"amazon web services", "aws", "lambda", "s3", "ec2"}, Weight: 1.0, Domain: "cloud"},
		{Name: "gcp", Keywords: []string{"google cloud", "gcp", "bigquery"}, Weight: 0.9, Domain: "cloud"},
		{Name: "azure", Keywords: []string{"azure"}, Weight: 0.9, Domain: "cloud"},
		{Name: "postgresql", Keywords: []string{"postgresql", "postgres"}, Weight: 1.0, Domain: "database", Implies: []string{"sql fundamentals"}},
		{Name: "mysql", Keywords: []string{"mysql", "mariadb"}, Weight: 0.9, Domain: "database", Implies: []string{"sql fundamentals"}},
		{Name: "mongodb", Keywords: []string{"mongodb", "mongo"}, Weight: 1.0, Domain: "database"},
		{Name: "redis", Keywords: []string{"redis"}, Weight: 0.9, Domain: "database"},
		{Name: "sqlite", Keywords: []string{"sqlite"}, Weight: 0.8, Domain: "database", Implies: []string{"sql fundamentals"}},
		{Name: "elasticsearch", Keywords: []string{"elasticsearch", "opensearch"}, Weight: 0.8, Domain: "search"},
		{Name: "kafka", Keywords: []string{"kafka", "event streaming"}, Weight: 0.9, Domain: "messaging"},
		{Name: "graphql", Keywords: []string{"graphql"}, Weight: 0.9, Domain: "api"},
		{Name: "rest", Keywords: []string{"rest api", "restful", "rest"}, Weight: 0.8, Domain: "api"},
		{Name: "grpc", Keywords: []string{"grpc", "protocol buffers", "protobuf"}, Weight: 0.8, Domain: "api"},
		{Name: "machine learning", Keywords: []string{"machine learning", "deep learning", "neural network", "neural networks", "ml"}, Weight: 1.0, Domain: "data", Implies: []string{"python knowledge", "statistics fundamentals"}},
		{Name: "llm", Keywords: []string{"large language model", "large language models", "llm", "rag", "embeddings", "prompt engineering"}, Weight: 1.0, Domain: "data", Implies: []string{"machine learning fundamentals"}},
		{Name: "data engineering", Keywords: []string{"data engineering", "data pipeline", "data pipelines", "etl", "airflow", "spark"}, Weight: 0.9, Domain: "data"},
		{Name: "pandas", Keywords: []string{"pandas", "numpy", "jupyter"}, Weight: 0.8, Domain: "data", Implies: []string{"python knowledge"}},
		{Name: "pytorch", Keywords: []string{"pytorch", "tensorflow", "keras"}, Weight: 0.9, Domain: "data", Implies: []string{"machine learning fundamentals"}},
		{Name: "swift", Keywords: []string{"swift", "swiftui", "ios"}, Weight: 0.9, Domain: "mobile"},
		{Name: "kotlin", Keywords: []string{"kotlin", "android"}, Weight: 0.9, Domain: "mobile"},
		{Name: "flutter", Keywords: []string{"flutter", "dart"}, Weight: 0.9, Domain: "mobile"},
		{Name: "css", Keywords: []string{"tailwind", "css", "sass"}, Weight: 0.7, Domain: "frontend"},
		{Name: "html", Keywords: []string{"html"}, Weight: 0.6, Domain: "frontend"},
		{Name: "git", Keywords: []string{"github actions", "git", "github", "gitlab"}, Weight: 0.6, Domain: "tooling"},
		{Name: "ci/cd", Keywords: []string{"continuous integration", "continuous deployment", "ci/cd", "jenkins"}, Weight: 0.7, Domain: "tooling"},
		{Name: "websockets", Keywords: []string{"websocket", "websockets", "real-time"}, Weight: 0.7, Domain: "api"},
		{Name: "security", Keywords: []string{"oauth", "authentication", "authorization", "jwt", "security"}, Weight: 0.7, Domain: "security"},
	}
}

// defaultSynonyms maps common abbreviations to their canonical form before
// taxonomy matching. Unresolved tokens pass through unchanged.
func defaultSynonyms() map[string]string {
	return map[string]string{
		"js":       "javascript",
		"ts":       "typescript",
		"py":       "python",
		"golang":   "go",
		"k8s":      "kubernetes",
		"mongo":    "mongodb",
		"postgres": "postgresql",
		"ml":       "machine learning",
		"dl":       "deep learning",
		"tf":       "tensorflow",
		"es":       "elasticsearch",
		"gql":      "graphql",
		"rn":       "react native",
		"node":     "nodejs",
	}
}

// advancedTerms are keywords whose presence raises the complexity score.
var advancedTerms = []string{
	"kubernetes", "machine learning", "deep learning", "distributed",
	"microservices", "scalability", "sharding", "consensus", "raft",
	"concurrency", "parallelism", "low latency", "high availability",
	"event sourcing", "cqrs", "observability", "orchestration",
	"reinforcement learning", "transformer", "fine-tuning",
}

// projectTypeTerms are recognizable project-type keywords that raise
// extraction confidence.
var projectTypeTerms = []string{
	"app", "application", "api", "website", "web app", "service",
	"dashboard", "bot", "pipeline", "game", "tool", "library", "cli",
	"platform", "extension", "plugin", "scraper", "backend", "frontend",
}
