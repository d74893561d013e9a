// Package theme converts BetterDiscord .theme.css files into Replugged
// theme archives.
//
// Metadata is read from the comment header at the top of the stylesheet.
// Two header styles are recognized:
//
//	/**
//	 * @name Midnight
//	 * @author someone
//	 * @version 1.0.0
//	 */
//
// and the legacy single-line form:
//
//	//META{"name":"Midnight","author":"someone"}*//
//
// The resulting archive holds manifest.json and the stylesheet itself.
package theme
