package promptgen

import "strings"

// DefaultBundles returns the predefined keyword bundles that can be appended
// to a scenario seed.
func DefaultBundles() map[string][]string {
	return map[string][]string{
		"quality-outfit": {
			"couture outfit",
			"tailored silhouette",
			"asymmetric drape",
			"structured jacket",
			"hand-sewn lace applique",
			"micro-bead accents",
			"satin finish",
			"precise seam work",
			"minimal metallic accessories",
		},
		"quality-character": {
			"elegant adult woman",
			"photorealistic skin detail",
			"subtle pore texture",
			"catchlight in eyes",
			"refined posture",
			"sleek hairstyle",
			"soft contour makeup",
			"glossy lips",
			"minimal jewelry",
			"graceful presence",
		},
		"cinematic-light": {
			"cinematic lighting",
			"soft key light",
			"low key fill",
			"practical lights in frame",
			"volumetric haze",
			"film grain",
			"balanced contrast",
		},
		"studio-portrait": {
			"studio portrait",
			"seamless backdrop",
			"softbox lighting",
			"crisp focus",
			"neutral color grade",
			"professional retouch",
		},
	}
}

// BundleNames returns the sorted-ish stable list of bundle keys for help text.
func BundleNames() []string {
	return []string{"quality-outfit", "quality-character", "cinematic-light", "studio-portrait"}
}

// ComposeSeed joins scenario text, per-shot hint tokens, and selected bundle
// tokens into a single comma-separated seed line.
func ComposeSeed(scenario, shotTokens string, bundleTokens []string) string {
	parts := make([]string, 0, 2+len(bundleTokens))
	if s := strings.TrimSpace(scenario); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(shotTokens); s != "" {
		parts = append(parts, s)
	}
	for _, b := range bundleTokens {
		if s := strings.TrimSpace(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}
