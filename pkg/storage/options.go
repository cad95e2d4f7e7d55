package storage

// Option configures Put.
type Option func(*putOptions)

type putOptions struct {
	contentType string
	acl         ACL
}

// WithContentType sets the object's content type. Default: text/html; charset=utf-8.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		if ct != "" {
			o.contentType = ct
		}
	}
}

// WithACL overrides the configured default ACL.
func WithACL(acl ACL) Option {
	return func(o *putOptions) {
		if acl != "" {
			o.acl = acl
		}
	}
}
