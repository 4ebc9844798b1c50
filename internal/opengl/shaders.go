package opengl

// vertex shader: a single directional sun plus ambient. Matrices are uploaded
// untransposed from the row-vector CPU convention, so mvp*v here is v*mvp there.
const vertSrc = `
#version 410 core
layout(location = 0) in vec3 inPosition;
layout(location = 1) in vec3 inNormal;
layout(location = 2) in vec2 inUV;
layout(location = 3) in vec4 inColor;

uniform mat4 mvp;
uniform mat4 model;

out vec4 fragColor;
out vec3 fragNormal;
out vec2 fragUV;

void main() {
    gl_Position = mvp * vec4(inPosition, 1.0);
    fragColor   = inColor;
    fragNormal  = mat3(model) * inNormal;
    fragUV      = inUV;
}
` + "\x00"

// fragment shader: Lambert diffuse with an unlit path for overlay geometry.
const fragSrc = `
#version 410 core
in vec4 fragColor;
in vec3 fragNormal;
in vec2 fragUV;

out vec4 outColor;

uniform vec3  lightDir;
uniform vec3  lightColor;
uniform float lightIntensity;
uniform vec3  ambientColor;

uniform vec3 matAlbedo;

uniform sampler2D albedoTex;
uniform bool      hasTexture;

// skip lighting and output raw base colour
uniform bool unlit;

void main() {
    vec3 base = matAlbedo * fragColor.rgb;
    if (hasTexture) {
        base *= texture(albedoTex, fragUV).rgb;
    }
    if (unlit) {
        outColor = vec4(base, 1.0);
        return;
    }

    vec3 n = normalize(fragNormal);
    float diffuse = max(dot(n, -normalize(lightDir)), 0.0);
    vec3 lit = base * (ambientColor + lightColor * lightIntensity * diffuse);
    outColor = vec4(lit, 1.0);
}
` + "\x00"
