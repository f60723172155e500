package promptgen

// SamplePositives are the built-in positive prompt lines written to
// positive.txt (one per line, wildcard-file compatible) and used as seeds
// when the caller supplies none.
var SamplePositives = []string{
	"golden hour rooftop portrait, elegant adult woman, tailored wool coat, windswept hair, " +
		"85mm lens, shallow depth of field, photorealistic skin detail, catchlight in eyes, " +
		"muted city skyline, soft rim lighting, film grain, balanced composition, looking at viewer, " +
		"solo, long hair, closed mouth, simple background, long sleeves, brown eyes, brown hair",
}

// SampleNegatives are the built-in negative prompt lines written to
// negative.txt.
var SampleNegatives = []string{
	"(worst quality, low quality), blurry, jpeg artifacts, watermark, text, signature, " +
		"extra fingers, deformed hands, closed eyes, oversaturated, (2d, anime, drawing, cartoon, cg, 3d, rendered)",
}

// DefaultMinorCodedTags is the base banned set for the post-generation
// adult-only reject filter. Entries are compared via NormalizeKey.
var DefaultMinorCodedTags = []string{
	"loli",
	"teen",
	"teenage",
	"schoolgirl",
	"underage",
	"minor",
	"child",
	"kid",
	"young girl",
	"young boy",
}
