package noise

// DrupalMarker opens the gated tier of the built-in catalogue.
const DrupalMarker = "Drupal"

// DefaultRules returns the built-in noise catalogue, unconditional rules
// first. Each call returns a fresh slice; the matchers are shared.
func DefaultRules() []Rule {
	return append(append([]Rule(nil), unconditionalRules...), drupalRules...)
}

var unconditionalRules = []Rule{
	// Comments often carry timestamps or page generation stats.
	{Name: "html-comment", Matcher: mustSpan(`<!--`, `-->`, 1, 4000)},
	// DokuWiki embeds the current Unix time.
	{Name: "dokuwiki-indexer", Matcher: MustPattern(`/lib/exe/indexer.php\?id=&amp;\d{10}`)},
	// Drupal "theme_token":"..." and CloudFlare petok:"-1413059798-86400".
	{Name: "json-token", Matcher: MustPattern(`(petok|_token)"?:"[-_A-Za-z0-9]+"`)},
	{Name: "hex-token", Matcher: MustPattern(`\b[A-Fa-f0-9]{32,64}\b`)},
	// Randomized anti-spam mailto links. Address parts are bounded in bytes.
	{Name: "mailto-obfuscated", Matcher: MustBoundedPattern(
		`<a href="mailto:([^"@]+)@([^"]+)">(&#[0-9a-fA-Fx]{2,4};){3,100}</a>`,
		Bound{Group: 1, Min: 1, Max: 100}, Bound{Group: 2, Min: 2, Max: 100},
	)},
	// Share buttons, whatever URL they carry.
	{Name: "facebook-like", Matcher: MustPattern(`<div class="fb-like" data-href=".*?</div>`)},
	{Name: "twitter-share", Matcher: MustPattern(`<a href="https?://twitter.com/share" class="twitter-share-button" data-text=".*?</a>`)},
	{Name: "cloudflare-ray-id", Matcher: MustPattern(`Ray ID: (<strong>)?[0-9a-f]{16}`)},
	// CloudFlare block page: "...based on your browser's signature (166d5a82362b1219-ua48)."
	// The suffix is bounded in bytes.
	{Name: "browser-signature", Matcher: MustBoundedPattern(
		`your browser's signature \([0-9a-f]{16}-([^\)]+)\)`,
		Bound{Group: 1, Min: 1, Max: 10},
	)},
	// Drupal puts the current URL here, and the casing doesn't always match.
	{Name: "canonical-link", Matcher: MustPattern(`<link rel="(canonical|shortlink)" href="[^"]+" />`)},
	{Name: "upload-token", Matcher: MustPattern(`<input type="hidden" name="file_uploadToken" value="\d+"`)},
	{Name: "flashvars-clock", Matcher: MustPattern(`<param name="flashvars" value="servannee=\d{4}&amp;servmois=\d{1,2}&amp;servjour=\d{1,2}&amp;servheure=\d{1,2}&amp;servminute=\d{1,2}&amp;servseconde=\d{1,2}" />`)},
	// Generated from the URL by Drupal, and by some other CMSes too.
	{Name: "body-class", Matcher: MustPattern(`<body class="[^"]+"`)},
}

var drupalRules = []Rule{
	// The whole inline settings line.
	{Name: "drupal-settings", Gate: []byte(DrupalMarker), Matcher: mustSpan(`jQuery\.extend\(Drupal.settings, ?\{`, `});`, 1, 20000)},
	{Name: "drupal-form-id", Gate: []byte(DrupalMarker), Matcher: MustPattern(`\bvalue="form-[-_A-Za-z0-9]+\b"`)},
	{Name: "drupal-view-dom-id", Gate: []byte(DrupalMarker), Matcher: MustPattern(`\bview-dom-id-[0-9a-f]+\b`)},
	// Randomized sidebar content. Removes to the end of the line.
	{Name: "drupal-views-field", Gate: []byte(DrupalMarker), Matcher: MustPattern(`<div class="views-field views-field-[-a-z]+">.*`)},
	{Name: "drupal-breadcrumb", Gate: []byte(DrupalMarker), Matcher: mustSpan(`<div class="breadcrumb">`, `    </div>`, 1, 4000)},
}
