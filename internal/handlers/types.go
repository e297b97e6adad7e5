package handlers

import "github.com/serroba/linkclean/internal/recent"

// ResolveRequest is the validated resolution request.
type ResolveRequest struct {
	Body struct {
		URL      string `doc:"Share link to resolve" example:"https://vm.tiktok.com/ZMabcdXYZ/" json:"url" maxLength:"2048" minLength:"1"`
		Validate *bool  `doc:"Reject links that are not known share links before resolving (default true)" json:"validate,omitempty" required:"false"`
	}
}

// ResolveQueryRequest is the lenient resolution request; the link is never pre-validated.
type ResolveQueryRequest struct {
	URL string `doc:"Share link to resolve" example:"https://vm.tiktok.com/ZMabcdXYZ/" maxLength:"2048" minLength:"1" query:"url" required:"true"`
}

// ResolveResponse carries the canonical link and any metadata the backend returned.
type ResolveResponse struct {
	Body struct {
		CanonicalURL string `doc:"Link without tracking parameters" example:"https://www.tiktok.com/@user/video/12345" json:"canonicalUrl"`
		Creator      string `doc:"Video author"                     example:"user"                                   json:"creator,omitempty"`
		PreviewImage string `doc:"Preview image URL"                json:"previewImage,omitempty"`
	}
}

// RecentResponse lists remembered links, newest first.
type RecentResponse struct {
	Body []recent.Entry
}

// DecodeRequest carries an obfuscated payload.
type DecodeRequest struct {
	Body struct {
		Data string `doc:"Obfuscated payload as returned by the resolution backend" json:"data" minLength:"1"`
	}
}

// DecodeResponse is the decoded JSON value.
type DecodeResponse struct {
	Body any
}

// LanguageResponse is the language the client should use.
type LanguageResponse struct {
	Body struct {
		Language string `doc:"Language code"                                 enum:"en,es,fr,it,de" example:"en" json:"language"`
		Source   string `doc:"Where the language came from"                  enum:"preference,provider,locale,default" json:"source"`
		Provider string `doc:"Geolocation provider, when source is provider" json:"provider,omitempty"`
	}
}

// SetLanguageRequest stores an explicit language choice.
type SetLanguageRequest struct {
	Body struct {
		Language string `doc:"Language code" enum:"en,es,fr,it,de" example:"fr" json:"language"`
	}
}
