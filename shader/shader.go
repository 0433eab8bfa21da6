package shader

// ────────────────────────────────── Vertex ─────────────────────────────────────

// The vertex stage is identical for every pass: place the unit plane with a
// single transform. Fragment stages rebuild their UVs from gl_FragCoord, so
// no varyings cross the stage boundary and only fragment sources need to
// go through the translator.

const vertexShaderSourceGL = `#version 410 core
layout (location = 0) in vec2 in_vert;
uniform mat4 uTransform;
void main() {
    gl_Position = uTransform * vec4(in_vert, 0.0, 1.0);
}
`

const vertexShaderSourceGLES = `#version 300 es
layout (location = 0) in vec2 in_vert;
uniform mat4 uTransform;
void main() {
    gl_Position = uTransform * vec4(in_vert, 0.0, 1.0);
}
`

// ─────────────────────────────── Heat feedback ─────────────────────────────────

// HeatFragment advects and decays the previous heat frame and stamps new
// heat at the pointer.
//
//	R/G: movement direction memory, clamped to [-1, 1]
//	B:   heat intensity
const HeatFragment = `#version 300 es
precision highp float;

uniform float uDraw;
uniform vec3 uRadius;
uniform vec3 uResolution;
uniform vec2 uPosition;
uniform vec4 uDirection;
uniform float uFadeDamping;
uniform float uAdvection;
uniform vec2 uViewport;
uniform sampler2D uTexture;

out vec4 fragColor;

void main() {
    vec2 vUv = gl_FragCoord.xy / uViewport;

    float aspect = uResolution.x / uResolution.y;
    vec2 pos = uPosition;
    pos.y /= aspect;
    vec2 uv = vUv;
    uv.y /= aspect;

    float dist = distance(pos, uv) / ((uRadius.z * 1.5) / uResolution.x);
    dist = smoothstep(uRadius.x, uRadius.y, dist);

    vec3 dir = uDirection.xyz * uDirection.w;
    vec2 offset = vec2(-dir.x * (1.0 - dist), dir.y * (1.0 - dist));

    vec4 color = texture(uTexture, vUv + offset * uAdvection);
    color *= uFadeDamping;
    color.r += offset.x;
    color.g += offset.y;
    color.rg = clamp(color.rg, -1.0, 1.0);
    color.b += uDraw * (1.0 - dist);

    fragColor = vec4(color.rgb, 1.0);
}
`

// ─────────────────────────────── Thermal composite ─────────────────────────────

// ThermalFragment maps heat through the seven color gradient, masked to
// the logo alpha. Loops a bottom-to-top glow even without input.
const ThermalFragment = `#version 300 es
precision highp float;

uniform sampler2D drawMap;
uniform sampler2D maskMap;
uniform sampler2D textureMap;
uniform float time;

uniform float opacity;
uniform float amount;
uniform vec2 scale;
uniform vec2 offset;
uniform float power;
uniform float blendVideo;
uniform float effectIntensity;
uniform float colorSaturation;
uniform float gradientShift;
uniform float interactionSize;

uniform vec3 color1;
uniform vec3 color2;
uniform vec3 color3;
uniform vec3 color4;
uniform vec3 color5;
uniform vec3 color6;
uniform vec3 color7;
uniform vec4 blend;
uniform vec4 fade;
uniform vec4 maxBlend;

uniform vec2 uViewport;
uniform mat4 uInverse;

out vec4 fragColor;

vec3 linearRgbToLuminance(vec3 c) {
    float f = dot(c, vec3(0.2126729, 0.7151522, 0.0721750));
    return vec3(f);
}

vec3 saturation(vec3 c, float s) {
    return mix(linearRgbToLuminance(c), c, s);
}

float noise(vec2 p) {
    return fract(sin(dot(p, vec2(12.9898, 78.233))) * 43758.5453);
}

float smoothNoise(vec2 p) {
    vec2 i = floor(p);
    vec2 f = fract(p);
    f = f * f * (3.0 - 2.0 * f);
    float a = noise(i);
    float b = noise(i + vec2(1.0, 0.0));
    float c = noise(i + vec2(0.0, 1.0));
    float d = noise(i + vec2(1.0, 1.0));
    return mix(mix(a, b, f.x), mix(c, d, f.x), f.y);
}

float band(float p, float f, float t) {
    return smoothstep(max(p - f * 0.5, 0.0), p + f * 0.5, t);
}

vec3 gradient(float t) {
    t = clamp(t + gradientShift, 0.0, 1.0);
    vec3 col = color1;
    col = mix(col, color2, band(blend.x, fade.x, t));
    col = mix(col, color3, band(blend.y, fade.y, t));
    col = mix(col, color4, band(blend.z, fade.z, t));
    col = mix(col, color5, band(blend.w, fade.w, t));
    col = mix(col, color6, band(maxBlend.x, maxBlend.z, t));
    col = mix(col, color7, band(maxBlend.y, maxBlend.w, t));
    return col;
}

void main() {
    vec2 duv = gl_FragCoord.xy / uViewport;
    vec4 local = uInverse * vec4(duv * 2.0 - 1.0, 0.0, 1.0);

    vec2 uv = local.xy + 0.5;
    uv -= 0.5;
    uv /= scale;
    uv += 0.5;
    uv += offset;

    float o = clamp(opacity, 0.0, 1.0);
    float a = clamp(amount, 0.0, 1.0);
    float v = o * a;

    float mask = texture(maskMap, uv).a;

    vec3 draw = texture(drawMap, duv).rgb;
    float heatDraw = draw.b * mask * interactionSize;

    float noiseAnim = smoothNoise(uv * 5.0 + vec2(time, time * 1.2));
    float waveAnim = 0.5 + 0.5 * sin(time * 0.5 + uv.y * 8.0);
    float timeAnim = mix(noiseAnim, waveAnim, 1.0);
    heatDraw += 0.8 * timeAnim;

    float map = pow(heatDraw, power);

    vec3 final = gradient(map);
    final = saturation(final, colorSaturation);
    final *= mask * (1.0 + map * 1.5);

    vec3 source = texture(textureMap, uv).rgb * mask;
    final = mix(source, final, blendVideo);

    final = mix(vec3(0.0), final, v * effectIntensity);
    final *= mask;
    float alpha = mask * (o * a * effectIntensity);

    fragColor = vec4(final, alpha);
}
`

// ────────────────────────────────── Public API ─────────────────────────────────

func GenerateVertexShader(isGLES bool) string {
	if isGLES {
		return vertexShaderSourceGLES
	}
	return vertexShaderSourceGL
}
