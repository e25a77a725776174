// Package prompts builds every instruction text sent to the generation
// service: the opening directive, the per-act transition directives, the
// generic continuation and the translation request.
package prompts

import (
	"fmt"
	"strings"

	"lingotale/arc"
	"lingotale/models"
)

// LanguageSpec carries the fixed language pairing of a deployment.
type LanguageSpec struct {
	Language        string // narration language
	ForeignLanguage string // vocabulary target language
	WordType        string // e.g. "common"
}

// Instructions renders the narrative portion of the opening directive from a
// sampled components map: tone, pacing, genre, themes, setting, cast and the
// exposition framing. This exact text is also persisted as part of the
// story's first user turn.
func Instructions(comps models.Narrative, spec LanguageSpec) string {
	var b strings.Builder

	b.WriteString("You are going to tell a short addictive and compelling story. You will use the Freytag's Pyramid as a reference for the structure.\n")
	fmt.Fprintf(&b, "To tell the story you have to use a %s tone and tell it in a pace like %s. ",
		comps.First("story_tone"), comps.First("story_pace"))
	fmt.Fprintf(&b, "The genre of the story you will tell is %s and %s, its subgenre %s and %s, diving in themes like [%s] and in topics like %s. ",
		comps.First("story_genre"), comps.At("story_genre", 1),
		comps.First("story_subgenre"), comps.At("story_subgenre", 1),
		comps.Range("story_theme", 0, 3), comps.Slice("story_topic", 0))
	fmt.Fprintf(&b, "The plot is a %s one and its archetype is %s. The story is oriented towards an %s audience. The story has a %s style.\n",
		comps.First("plot_description"), comps.First("plot_archetype"),
		comps.First("audience"), comps.First("story_style"))

	b.WriteString("These are the details for the Exposition part:\n")
	fmt.Fprintf(&b, "The exposition part will be told in %d segments.\n", arc.Length(arc.Exposition))
	fmt.Fprintf(&b, "The place of the setting is a %s, it's set in %s times. Its style is %s and it holds %s visuals.\n",
		comps.First("settings_places"), comps.First("settings_time"),
		comps.First("settings_styles"), comps.First("settings_description"))
	fmt.Fprintf(&b, "The main character is a %s %s, its archetype is %s and its role in the story's world is %s. ",
		comps.Range("characters_description", 0, 2), comps.First("characters"),
		comps.First("characters_archetype"), comps.First("characters_role"))
	fmt.Fprintf(&b, "They have these elements [%s] and if suited for them and for the story, they could be related to a %s. ",
		comps.Range("characters_elements", 0, 2), comps.First("characters_related_nouns"))
	fmt.Fprintf(&b, "Evaluate if the main character will have key supporting characters or if the story will hold secondary ones in this part. Afterwards, if suited, take at most two from here: [%s] they could have any of these roles [%s] and be related, if suited, to [%s]. If you will include them, then the character's relationship is %s.\n",
		comps.Slice("characters", 1), comps.Slice("characters_role", 1),
		comps.Slice("characters_related_nouns", 1), comps.First("characters_relationship"))

	b.WriteString(`Final advice:
ALWAYS MAKE SURE TO NOT USE THE INSTRUCTIONS I GAVE YOU AND I WILL GIVE YOU FOR THE STORY AS WORDS IN THE STORY.
The very first sentence or paragraph needs to grab the reader's attention immediately and make them want to continue.
Keep the total number of characters very limited. Each one should have a clear purpose. And make dialogue revealing of character and purposeful for advancing the plot. Every word counts. Cut anything extraneous. Eliminate anything that doesn't contribute to character, plot, setting, or theme.
Let the theme of the story emerge naturally from the characters' actions and the events of the story. Similarly, if you use symbolism, let it be subtle and enhance the story, rather than feeling forced.
Instead of telling the reader something, show it through actions, sensory details, and dialogue; engage all five senses (sight, sound, smell, taste, touch) in your descriptions. Don't just tell them what things look like; tell them what they feel, hear, smell, and even taste.
For all characters, places, unique species, technologies, and all concepts/unique terms introduced in this story, generate names that are exceptionally uncommon, highly original, and phonetically distinct from any commonly known names or combinations. Steer clear of generic human names, common fantasy names, generic sci-fi names, or names that sound like existing famous characters or places. Crucially, these names must be easy to read and pronounce, engaging, and memorable. They should be distinct from each other within the narrative and truly unique across different novel generations, ensuring each new story has fresh, non-recurrent naming.
If some of my specifications are empty, craft an original substitute for it based on the soul of the current story.
`)

	fmt.Fprintf(&b, " 7. Do not make the %s words stand out, you would be making worse the reading experience of the user, so don't do it. 8. In each of your turns you will output uniquely the next segment. 9. Ensure you did exactly all I asked you to do.",
		spec.ForeignLanguage)

	return b.String()
}

// Opening wraps the narrative instructions with the word-pool lock rules and
// the one-time request for the title and pool alongside the first segment.
func Opening(instructions string, quota int, spec LanguageSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a multilingual language-learning assistant. Your task is to create a single engaging story in %s that incorporates a fixed pool of %d %s words.\n",
		spec.Language, quota, spec.ForeignLanguage)
	b.WriteString("Fixed Rules:\n1. Word Pool Lock:\n")
	fmt.Fprintf(&b, "At the beginning of the session select %d unique foreign words from the target language, they must not repeat. Do not reveal them. Lock them and never output any other %s word that is not in the pool, no matter the circumstance.\n",
		quota, spec.ForeignLanguage)
	b.WriteString("2. Story Format:\n")
	fmt.Fprintf(&b, "2.0. If in the story you need to use the %s word equivalent of any %s word that is in the word pool, use instead and always the %s word version. You must use just %s words from the word pool. Never use in the story, nor in any of your outputs, any other %s words that aren't in the pool, no matter the circumstance, this must never be broken, is a rule.\n",
		spec.Language, spec.ForeignLanguage, spec.ForeignLanguage, spec.ForeignLanguage, spec.ForeignLanguage)
	fmt.Fprintf(&b, "2.1. The story will be told in segments of around 80 words length. If in a certain segment you needed to use %s words, that segment length needs to be around 110 words instead.\n",
		spec.ForeignLanguage)
	b.WriteString("3. Narrative:\nThe start of the narrative must be completely engaging, exciting and so unique that it is extremely difficult to replicate.\n")
	fmt.Fprintf(&b, "4. %s Words Selection Method:\nSelect %s words.\nSelect words that deepen engagement, reinforce narrative, or feel contextually natural.\nThey should be picked based on the story you're building, not randomly.\n",
		spec.ForeignLanguage, spec.WordType)
	fmt.Fprintf(&b, "5. Grammar and coherence:\nYou are free to use phrases or even whole sentences in %s if needed. The usage of the %s words must follow the %s grammar rules and nature of the language.\n",
		spec.ForeignLanguage, spec.ForeignLanguage, spec.ForeignLanguage)
	b.WriteString("6. Story creation instructions:\n")
	b.WriteString(instructions)
	b.WriteString(" Just for this turn, give me the title and the pool of words along the segment too. For the novel's title, create an uncommon, highly original, and evocative title that hints at the story's depth without revealing too much. Absolutely avoid generic fantasy, sci-fi, or overly dramatic clichés.")
	return b.String()
}

// StoredOpening is the user turn persisted as the story's first context
// entry: the same narrative instructions, but with the word-pool rules
// rewritten around the now-known, explicit pool.
func StoredOpening(instructions string, poolWords []string, spec LanguageSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a multilingual language-learning assistant. Your task is to create a single addictive story in %s that incorporates a fixed pool of %s words.\n",
		spec.Language, spec.ForeignLanguage)
	fmt.Fprintf(&b, "1. Pool of words:\nThe pool of words is this: [%s]. Never output any other %s word that is not in the pool, no matter the circumstance.\n",
		strings.Join(poolWords, ","), spec.ForeignLanguage)
	b.WriteString("2. Story Format:\n")
	fmt.Fprintf(&b, "If in the story you need to use the %s word equivalent of any %s word that is in the pool of words, use instead and always the %s word version. You must use just %s words from the pool of words. Never use in the story, nor in any of your outputs, any other %s words that aren't in the pool, no matter the circumstance, this must never be broken, is a rule. The story will be told in segments of around 80 words length. If in a certain segment you had to use %s words, that segment length needs to be around 110 words instead.\n",
		spec.Language, spec.ForeignLanguage, spec.ForeignLanguage, spec.ForeignLanguage, spec.ForeignLanguage, spec.ForeignLanguage)
	fmt.Fprintf(&b, "3. Grammar and coherence:\nYou are free to construct phrases or even whole sentences in %s if needed, using the %s words from the word pool. The usage of the %s words must follow the %s grammar rules and nature of the language.\n",
		spec.ForeignLanguage, spec.ForeignLanguage, spec.ForeignLanguage, spec.ForeignLanguage)
	b.WriteString("4. Story creation instructions:\n")
	b.WriteString(instructions)
	return b.String()
}

// PhaseDirective renders the instruction issued at an act boundary. The
// rising action draws settings and cast from the stored story components;
// the later acts are fixed texts framed with their act lengths.
func PhaseDirective(phase arc.Phase, comps models.Narrative) string {
	switch phase {
	case arc.RisingAction:
		return fmt.Sprintf("Start the rising action, build suspense, introduce complications, and develop the characters as they face obstacles leading to the climax. If the story is suited, use this setting as one of the included in this part of the story: %s %s, or ones from here [%s]. You will introduce characters that are relevant to the developing conflict, you can take from here as many as they are suited for the story: [%s], they could have these archetypes [%s] and be related to [%s]. It will be told in %d segments.",
			firstOf(comps.Destination.Characteristic), firstOf(comps.Destination.Destinations),
			comps.Slice("settings_places", 1), comps.Slice("characters", 0),
			comps.Slice("characters_archetype", 3), comps.Slice("characters_related_nouns", 3),
			arc.Length(arc.RisingAction))
	case arc.Climax:
		return fmt.Sprintf("Start the climax. The story is in the turning point where tension is at its peak. The protagonist must face their biggest challenge or make a crucial decision. This determines the story's outcome. It will be told in %d segments.",
			arc.Length(arc.Climax))
	case arc.FallingAction:
		return fmt.Sprintf("Start the falling action. Show the events that occur after the climax, where the tension eases and the consequences of the climax unfold. Loose ends might be tied up, and other character arcs begin to resolve. It will be told in %d segments.",
			arc.Length(arc.FallingAction))
	case arc.Resolution:
		return fmt.Sprintf("Start the resolution (ending). Even if it's not a \"happy\" ending, it should feel earned and complete for the story's scope. It should provide closure for the main conflict and show the protagonist's final state or change. Provide a satisfying conclusion that resonates with the reader and gives a sense of what happened and what it means. It will be told in %d segments.",
			arc.Length(arc.Resolution))
	}
	return Continue(LanguageSpec{})
}

// Continue is the generic directive reissued on every non-boundary turn.
func Continue(spec LanguageSpec) string {
	return fmt.Sprintf("Continue the story, building on the previous events. Maintain the established tone, style, and pacing. Deepen character reactions and sensory details. Show, don't tell. Ensure the narrative remains engaging and propels the reader forward. Do not make the %s words stand out. Ensure you do all it was instructed to you. Output the next segment",
		spec.ForeignLanguage)
}

// Final asks for the story's last segment.
func Final() string {
	return "You will output the last segment of the story. Amaze the readers"
}

// Translation asks for an inline translation of one segment, with everything
// but the translated words and their neighborhood elided.
func Translation(segment string, spec LanguageSpec) string {
	return fmt.Sprintf("Replace all %s words with their equivalent or translation to %s, maintaining sense and coherence. After that, replace all text with enclosed ellipses in square brackets (this: [...]) except for the words that were translated and their immediate 2 neighboring words. I do not want to see the changes you made, so do not make the translated words stand out nor the [...]. Give the near words space from the [...], they must be clearly separated from it. Give me back the new text and ensure you did exactly all I asked you to do. The paragraph: %s",
		spec.ForeignLanguage, spec.Language, segment)
}

func firstOf(values []string) string {
	if len(values) > 0 {
		return values[0]
	}
	return ""
}
