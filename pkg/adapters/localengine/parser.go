package localengine

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aretw0/buildsync/pkg/domain"
)

// Exported builds write unset attributes as attr="nil".
var nilAttr = regexp.MustCompile(`\w+?="nil"`)

// legacyGemIDs maps gem ids written by older exporters to the current game ids.
var legacyGemIDs = map[string]string{
	"Metadata/Items/Gems/Smite":                   "Metadata/Items/Gems/SkillGemSmite",
	"Metadata/Items/Gems/ConsecratedPath":         "Metadata/Items/Gems/SkillGemConsecratedPath",
	"Metadata/Items/Gems/VaalAncestralWarchief":   "Metadata/Items/Gems/SkillGemVaalAncestralWarchief",
	"Metadata/Items/Gems/HeraldOfAgony":           "Metadata/Items/Gems/SkillGemHeraldOfAgony",
	"Metadata/Items/Gems/HeraldOfPurity":          "Metadata/Items/Gems/SkillGemHeraldOfPurity",
	"Metadata/Items/Gems/ScourgeArrow":            "Metadata/Items/Gems/SkillGemScourgeArrow",
	"Metadata/Items/Gems/RainOfSpores":            "Metadata/Items/Gems/SkillGemToxicRain",
	"Metadata/Items/Gems/SummonRelic":             "Metadata/Items/Gems/SkillGemSummonRelic",
	"Metadata/Items/Gems/SkillGemNewArcticArmour": "Metadata/Items/Gems/SkillGemArcticArmour",
}

// ParseBuild parses build XML into a Build.
func ParseBuild(text string) (*domain.Build, error) {
	clean := nilAttr.ReplaceAllLiteralString(text, "")

	var build domain.Build
	if err := xml.Unmarshal([]byte(clean), &build); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	// Builds without skill sets keep their groups at the top level.
	if len(build.Skills.SkillSets) == 0 && len(build.Skills.Legacy) > 0 {
		build.Skills.SkillSets = []domain.SkillSet{{ID: 1, Groups: build.Skills.Legacy}}
		build.Skills.Legacy = nil
	}
	if build.Skills.ActiveSkillSet == 0 && len(build.Skills.SkillSets) > 0 {
		build.Skills.ActiveSkillSet = 1
	}

	for i := range build.Skills.SkillSets {
		groups := build.Skills.SkillSets[i].Groups
		for j := range groups {
			for k, gem := range groups[j].Gems {
				if gameID, ok := legacyGemIDs[gem.GemID]; ok {
					groups[j].Gems[k].GemID = gameID
				}
			}
		}
	}

	for _, in := range build.Config.Inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrParse, err)
		}
	}

	nodes, err := activeSpecNodes(&build.Tree)
	if err != nil {
		return nil, err
	}
	build.Character.PassiveNodes = nodes

	return &build, nil
}

func activeSpecNodes(tree *domain.Tree) ([]int64, error) {
	nodes := make([]int64, 0, 100)
	if len(tree.Specs) == 0 {
		return nodes, nil
	}

	idx := tree.ActiveSpec - 1
	if idx < 0 || idx >= len(tree.Specs) {
		return nil, fmt.Errorf("%w: active spec %d out of range", domain.ErrParse, tree.ActiveSpec)
	}

	attr := strings.TrimSpace(tree.Specs[idx].NodesAttr)
	if attr == "" {
		return nodes, nil
	}
	for _, str := range strings.Split(attr, ",") {
		num, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: spec has non-integer nodes: %s", domain.ErrParse, attr)
		}
		nodes = append(nodes, num)
	}
	return nodes, nil
}
