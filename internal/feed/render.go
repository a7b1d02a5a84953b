package feed

import (
	"fmt"
	"strings"
)

// Kind discriminates the three rendering shapes an event can take.
type Kind int

const (
	// KindEmbed is a single rich rendering, with or without an image.
	KindEmbed Kind = iota
	// KindEmbedWithLinks is a rich rendering plus a flat list of
	// supplementary media links (more than one attachment).
	KindEmbedWithLinks
	// KindPlain is a bare link string (single video attachment, proxied).
	KindPlain
)

// Embed is the rich rendering of an event.
type Embed struct {
	Title      string
	Body       string
	ImageURL   string
	FooterText string
	FooterIcon string
}

// Rendering is the delivery payload produced once per event and sent to
// every destination.
type Rendering struct {
	Kind  Kind
	Embed Embed
	// Links carries the supplementary media links for KindEmbedWithLinks.
	Links []string
	// Text carries the bare string for KindPlain.
	Text string
}

// DefaultMediaHosts is the CDN host allowlist for quality rewriting.
var DefaultMediaHosts = []string{"twimg"}

// mediaBase is the path the rewritten quality-variant URL is rebuilt onto.
const mediaBase = "https://pbs.twimg.com/media/"

// RewriteMediaURL rewrites a media URL from a known CDN host to request the
// original-quality variant: PNG stays PNG, everything else becomes JPEG.
// The rewrite works by splitting on "/", "?" and "." only; URLs from other
// hosts, and URLs without a recognizable last segment, pass through
// unchanged. Deliberately not a URL parser: malformed input degrades to
// pass-through.
func RewriteMediaURL(link string, hosts []string) string {
	matched := false
	for _, h := range hosts {
		if strings.Contains(link, h) {
			matched = true
			break
		}
	}
	if !matched {
		return link
	}

	parts := strings.Split(link, "/")
	last := parts[len(parts)-1]
	switch {
	case strings.Contains(last, "?"):
		segs := strings.Split(last, "?")
		return mediaBase + segs[0] + qualitySuffix(segs[len(segs)-1])
	case strings.Contains(last, "."):
		segs := strings.Split(last, ".")
		return mediaBase + segs[0] + qualitySuffix(segs[len(segs)-1])
	default:
		return link
	}
}

func qualitySuffix(ending string) string {
	if strings.Contains(ending, "png") {
		return "?format=png&name=orig"
	}
	return "?format=jpg&name=orig"
}

// Renderer turns an event into its delivery payload.
type Renderer struct {
	// MediaHosts is the CDN allowlist handed to RewriteMediaURL.
	MediaHosts []string
	// ProxyHost substitutes for the platform host on single-video events,
	// producing a link that embeds the video player.
	ProxyHost string
}

// NewRenderer returns a Renderer with the default CDN allowlist and proxy
// host.
func NewRenderer() *Renderer {
	return &Renderer{
		MediaHosts: DefaultMediaHosts,
		ProxyHost:  "fxtwitter.com",
	}
}

// Render produces the single rendering for an event:
//   - more than one attachment: embed plus a flat list of rewritten links
//   - exactly one video attachment: bare proxy link string
//   - exactly one image attachment: embed with the image set
//   - no attachments: bare embed
func (r *Renderer) Render(ev Event) Rendering {
	embed := Embed{
		Title:      fmt.Sprintf("%s (@%s)", ev.AuthorName, ev.AuthorHandle),
		Body:       ev.Text,
		FooterText: fmt.Sprintf("Post by @%s", ev.AuthorHandle),
		FooterIcon: ev.AvatarURL,
	}

	switch {
	case len(ev.Media) > 1:
		links := make([]string, 0, len(ev.Media))
		for _, m := range ev.Media {
			links = append(links, RewriteMediaURL(m.URL, r.MediaHosts))
		}
		return Rendering{Kind: KindEmbedWithLinks, Embed: embed, Links: links}

	case len(ev.Media) == 1 && ev.Media[0].Type == MediaVideo:
		return Rendering{
			Kind: KindPlain,
			Text: fmt.Sprintf("https://%s/%s/status/%s", r.ProxyHost, ev.AuthorHandle, ev.ID),
		}

	case len(ev.Media) == 1:
		embed.ImageURL = RewriteMediaURL(ev.Media[0].URL, r.MediaHosts)
		return Rendering{Kind: KindEmbed, Embed: embed}

	default:
		return Rendering{Kind: KindEmbed, Embed: embed}
	}
}
