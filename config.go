package recomendachef

type ModelConfig struct {
	Provider     string  `env:"AGENT_PROVIDER,default=groq"`
	ModelID      string  `env:"MODEL_ID,required"`
	GroqAPIKey   string  `env:"GROQ_API_KEY,default="`
	GroqEndpoint string  `env:"GROQ_ENDPOINT,default=https://api.groq.com/openai"`
	MaxTokens    int32   `env:"MAX_TOKENS,default=1024"`
	Temperature  float32 `env:"TEMPERATURE,default=0.2"`
	TopP         float32 `env:"TOP_P,default=0.9"`
}

type AgentConfig struct {
	CatalogPath     string `env:"CATALOG_PATH,default=artifacts/recipes.json"`
	CatalogS3Bucket string `env:"CATALOG_S3_BUCKET,default="`
	CatalogS3Key    string `env:"CATALOG_S3_KEY,default="`
	MaxIterations   int    `env:"MAX_ITERATIONS,default=10"`
}

type BotConfig struct {
	Token          string `env:"TELEGRAM_BOT_TOKEN,required"`
	TextPath       string `env:"BOT_TEXT_PATH,default="`
	PollTimeoutSec int    `env:"POLL_TIMEOUT_SEC,default=30"`
}

type StorageConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
}
