package scoring

// DefaultSkills is the vocabulary used when none is configured.
var DefaultSkills = []string{
	"python", "sql", "machine learning", "deep learning", "nlp", "transformers", "pandas", "numpy",
	"scikit-learn", "tensorflow", "pytorch", "keras", "xgboost", "lightgbm", "feature engineering",
	"data analysis", "mlops", "docker", "kubernetes", "flask", "fastapi", "streamlit",
	"aws", "azure", "gcp", "sagemaker", "git", "linux", "tableau", "power bi",
}
