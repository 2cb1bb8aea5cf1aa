package core

import "fmt"

// ComposeDocument embeds styles, markup and script into one renderable
// document. The inputs are inserted verbatim: nothing is escaped, sanitized
// or validated. Isolation is the rendering surface's job.
func ComposeDocument(markup, styles, script string) string {
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="UTF-8" /><meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <style>%s</style>
  </head>
  <body>
%s
    <script>%s</script>
  </body>
</html>
`, styles, markup, script)
}

// ComposeSources is ComposeDocument over a Sources triple.
func ComposeSources(src Sources) string {
	return ComposeDocument(src.Markup, src.Styles, src.Script)
}
