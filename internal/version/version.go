package version

const (
	AppName = "TuringBot"
	Version = "0.1.0"
)
