// Package asar converts BetterDiscord CSS themes into Replugged theme
// archives.
//
// A theme archive is an Electron ASAR file holding two payloads: a
// manifest.json describing the theme, followed by the stylesheet itself.
// The manifest is derived from the metadata comment at the top of the CSS.
//
// This package provides the high-level API through [Client], which converts
// themes and hands the resulting archives to one or more sinks (a local
// directory, an S3 bucket, an OCI registry). For low-level archive
// building, use the core subpackage; for metadata parsing alone, use the
// theme subpackage.
//
// # Quick Start
//
// Convert a theme into ./dist:
//
//	c, err := asar.NewClient(asar.WithOutputDir("./dist"))
//	if err != nil {
//	    return err
//	}
//	res, err := c.ConvertFile(ctx, "Midnight.theme.css")
//	// res.Name == "bd.theme.Midnight.asar"
//
// Convert every *.theme.css under a directory, skipping paths listed in
// its .asarignore:
//
//	results, err := c.ConvertDir(ctx, "./themes")
//
// # Registries
//
// Archives can also be published as OCI artifacts:
//
//	c, err := asar.NewClient(
//	    asar.WithDockerConfig(),
//	    asar.WithRegistry("ghcr.io/acme/themes", "latest"),
//	)
package asar
