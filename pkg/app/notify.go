package app

// BannerKind selects how a banner is styled.
type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
	BannerInfo    BannerKind = "info"
)

// Banner is a transient user-facing message.
type Banner struct {
	Kind    BannerKind
	Message string
}

// Notifier displays banners. Implementations must be safe for concurrent
// use; Bootstrap notifies from several goroutines.
type Notifier interface {
	Notify(Banner)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Banner)

func (f NotifierFunc) Notify(b Banner) { f(b) }
